package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
	"github.com/trezcool/hydrofarm/services/backend"
)

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// Token returns an HS256 JWT expiring at exp (no expiry when zero).
func Token(t *testing.T, subject string, exp time.Time) string {
	claims := jwt.StandardClaims{Subject: subject, IssuedAt: time.Now().Unix()}
	if !exp.IsZero() {
		claims.ExpiresAt = exp.Unix()
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Token(): %v", err)
	}
	return ss
}

// NewSession returns a session context backed by memory, logged in when role is set.
func NewSession(t *testing.T, role session.Role, id int, name string) (*session.Context, *session.MemoryStore) {
	store := session.NewMemoryStore()
	ctx := session.NewContext(store)
	if role == "" {
		return ctx, store
	}
	err := ctx.Update(session.Session{
		Token:    Token(t, name, time.Now().Add(time.Hour)),
		Role:     role,
		Identity: session.Identity{ID: id, Name: name},
	})
	if err != nil {
		t.Fatalf("NewSession(): %v", err)
	}
	return ctx, store
}

// NewClient returns a backend client for srv whose 401s clear sess.
func NewClient(srv *httptest.Server, sess *session.Context, verbs ...backendsvc.VerbStrategy) *backendsvc.Client {
	opts := backendsvc.Options{
		BaseURL:     srv.URL,
		Timeout:     2 * time.Second,
		LongTimeout: 4 * time.Second,
		HTTPClient:  srv.Client(),
		Logger:      NopLogger{},
	}
	if len(verbs) > 0 {
		opts.Verbs = verbs[0]
	}
	if sess != nil {
		opts.Tokens = sess
		opts.OnUnauthorized = func() { _ = sess.Clear() }
	}
	return backendsvc.NewClient(opts)
}

func Float(v float64) *float64 { return &v }
func Int(v int) *int             { return &v }
func String(v string) *string    { return &v }
