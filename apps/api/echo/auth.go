package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core/farm"
	"github.com/trezcool/hydrofarm/core/session"
)

const tokenContextKey = "token"

// Claims represents the authorization claims transmitted via a JWT.
// The standard Id claim is the token id revoked on logout.
type Claims struct {
	jwt.StandardClaims
	Role    string `json:"role"`
	ClassID int    `json:"class_id,omitempty"`
	AdminID int    `json:"admin_id,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Identity is the principal reported to the logger.
func (c Claims) Identity() session.Identity {
	id := c.ClassID
	if c.Role == farm.RoleAdmin {
		id = c.AdminID
	}
	return session.Identity{ID: id, Name: c.Name}
}

// Tokens signs and verifies the API tokens.
type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Tokens{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) config() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    t.key,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

func (t *Tokens) standard(subject int) jwt.StandardClaims {
	now := t.now()
	return jwt.StandardClaims{
		Id:        uuid.New().String(),
		Subject:   strconv.Itoa(subject),
		ExpiresAt: now.Add(t.ttl).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    "hydrofarm",
	}
}

func (t *Tokens) ClassClaims(class farm.Class, role string) *Claims {
	return &Claims{
		StandardClaims: t.standard(class.ID),
		Role:           role,
		ClassID:        class.ID,
		Name:           class.Name,
	}
}

func (t *Tokens) AdminClaims(adm farm.Admin) *Claims {
	return &Claims{
		StandardClaims: t.standard(adm.ID),
		Role:           farm.RoleAdmin,
		AdminID:        adm.ID,
		Name:           adm.Name,
	}
}

// Generate returns the signed token string representing the claims.
func (t *Tokens) Generate(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(t.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
