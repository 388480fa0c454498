package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	. "github.com/trezcool/hydrofarm/apps/api/echo"
	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/farm"
	inmemdb "github.com/trezcool/hydrofarm/storage/database/inmem"
	"github.com/trezcool/hydrofarm/tests"
)

const secretKey = "test-secret"

var (
	now    = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	tokens = NewTokens(secretKey, time.Hour)

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

// setup returns a server over a freshly seeded farm.
func setup(t *testing.T) (Server, farm.Repository) {
	db := inmemdb.Open()
	if err := inmemdb.Seed(db, now, inmemdb.SeedOptions{}); err != nil {
		t.Fatalf("Seed(): %v", err)
	}
	repo := inmemdb.NewFarmRepository(db)
	validate, translator := core.NewValidator()

	app := NewServer(&Options{
		DisableReqLogs: true,
		SecretKey:      secretKey,
		TokenTTL:       time.Hour,
		FarmSvc:        farm.NewService(repo, time.UTC),
		Validate:       validate,
		Translator:     translator,
		Logger:         testutil.NopLogger{},
		Now:            func() time.Time { return now },
	})
	return app, repo
}

type httpErr struct {
	Error interface{} `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	header   map[string]string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (tt httpTest) run(t *testing.T, app Server) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	for k, v := range tt.header {
		req.Header.Set(k, v)
	}
	app.ServeHTTP(rec, req)
	return rec
}

func classToken(t *testing.T, classID int, role string) string {
	token, err := tokens.Generate(tokens.ClassClaims(farm.Class{ID: classID, Name: "class"}, role))
	if err != nil {
		t.Fatalf("classToken(): %v", err)
	}
	return token
}

func adminToken(t *testing.T) string {
	token, err := tokens.Generate(tokens.AdminClaims(farm.Admin{ID: 1, Name: "Ms. Tanaka"}))
	if err != nil {
		t.Fatalf("adminToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
