package echoapi

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func newRequestID() string {
	return uuid.New().String()
}

// methodFromHeaderOrBody reads the tunnelled verb of a POST request from the header,
// then from the `field` member of a JSON or form body. A JSON body is restored for binding.
func methodFromHeaderOrBody(header, field string) middleware.MethodOverrideGetter {
	fromHeader := middleware.MethodFromHeader(header)
	fromForm := middleware.MethodFromForm(field)
	return func(ctx echo.Context) string {
		if m := fromHeader(ctx); m != "" {
			return strings.ToUpper(m)
		}

		req := ctx.Request()
		if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
			return strings.ToUpper(fromForm(ctx))
		}
		if req.Body == nil {
			return ""
		}
		body, err := ioutil.ReadAll(req.Body)
		if err != nil {
			return ""
		}
		req.Body = ioutil.NopCloser(bytes.NewReader(body))

		var data map[string]interface{}
		if err := json.Unmarshal(body, &data); err != nil {
			return ""
		}
		m, _ := data[field].(string)
		return strings.ToUpper(m)
	}
}

func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}
