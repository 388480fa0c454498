package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/farm"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.")
	errTokenRevoked       = echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
	errInvalidCode        = echo.NewHTTPError(http.StatusUnauthorized, "Invalid class code")
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errGuestReadOnly      = echo.NewHTTPError(http.StatusForbidden, "guests cannot make changes")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// farmError maps the farm service sentinels to their HTTP answer.
func farmError(err error) error {
	switch err {
	case farm.ErrNotFound:
		return errHttpNotFound
	case farm.ErrUnknownQuiz:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case farm.ErrCodeExists:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return err
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Field errors are sent as {"error": {field: message}}, everything else as {"error": message}.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := farmError(errors.Cause(err)).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors, *core.ValidationError:
			code = http.StatusBadRequest
			if flds := core.FieldErrors(origErr, translator); flds != nil {
				message = flds
			} else {
				message = origErr.Error()
			}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				args = append(args, claims.Identity())
			}
			if logger != nil {
				logger.Error(msg, args...)
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"error": message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
