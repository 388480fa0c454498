package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core/auth"
	"github.com/trezcool/hydrofarm/core/farm"
)

type authApi struct {
	svc      *farm.Service
	tokens   *Tokens
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, authed []echo.MiddlewareFunc, opts *Options, tokens *Tokens) {
	api := authApi{
		svc:      opts.FarmSvc,
		tokens:   tokens,
		validate: opts.Validate,
	}

	// un-authed endpoints
	g.POST("/login", api.login)
	g.POST("/admin/login", api.adminLogin)

	// authed endpoints
	g.POST("/logout", api.logout, authed...)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data auth.ClassLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	class, role, err := api.svc.AuthenticateClass(data.Code)
	if err != nil {
		if err == farm.ErrInvalidCode {
			return errInvalidCode
		}
		return errors.Wrap(err, "authenticating class")
	}
	token, err := api.tokens.Generate(api.tokens.ClassClaims(class, role))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, auth.ClassLogin{
		Token: token,
		Role:  role,
		Class: auth.ClassInfo{ID: class.ID, Name: class.Name, Locale: class.Locale},
	})
}

func (api *authApi) adminLogin(ctx echo.Context) error {
	var data auth.AdminLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	adm, err := api.svc.AuthenticateAdmin(data.Email, data.Password)
	if err != nil {
		if err == farm.ErrInvalidCredentials {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "authenticating admin")
	}
	token, err := api.tokens.Generate(api.tokens.AdminClaims(adm))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, auth.AdminLogin{
		Token: token,
		Admin: auth.AdminInfo{ID: adm.ID, Name: adm.Name, SchoolName: adm.SchoolName},
	})
}

func (api *authApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := api.svc.RevokeToken(claims.Id, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return errors.Wrap(err, "revoking token")
	}
	return ctx.NoContent(http.StatusNoContent)
}
