package auth

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
)

var (
	msgInvalidCode        = "invalid class code"
	msgInvalidCredentials = "invalid email or password"
	errMalformedResponse  = errors.New("malformed login response")
)

type Service struct {
	backend  core.Backend
	sess     *session.Context
	validate *validator.Validate
	logger   core.Logger
}

func NewService(backend core.Backend, sess *session.Context, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		backend:  backend,
		sess:     sess,
		validate: validate,
		logger:   logger,
	}
}

// LoginWithCode exchanges a class code for a session and makes it the active one.
func (svc *Service) LoginWithCode(ctx context.Context, code string) (ClassLogin, error) {
	req := ClassLoginRequest{Code: code}
	if err := req.Validate(svc.validate); err != nil {
		return ClassLogin{}, err
	}

	var resp ClassLogin
	if err := svc.backend.Do(ctx, http.MethodPost, "/login", req, &resp, core.Anonymous()); err != nil {
		return ClassLogin{}, loginError(err, msgInvalidCode)
	}
	if resp.Token == "" || resp.Class.ID == 0 {
		return ClassLogin{}, errMalformedResponse
	}

	sess := session.Session{
		Token: resp.Token,
		Role:  session.ParseRole(resp.Role),
		Identity: session.Identity{
			ID:     resp.Class.ID,
			Name:   resp.Class.Name,
			Locale: resp.Class.Locale,
		},
	}
	if sess.Role.IsAdmin() { // class codes never grant admin
		sess.Role = session.RoleGuest
	}
	if err := svc.sess.Update(sess); err != nil {
		return ClassLogin{}, errors.Wrap(err, "saving session")
	}
	svc.logger.Info("class login", sess.Identity)
	resp.Role = string(sess.Role) // the effective role
	return resp, nil
}

// LoginAsAdmin exchanges administrator credentials for a session and makes it the active one.
func (svc *Service) LoginAsAdmin(ctx context.Context, email, password string) (AdminLogin, error) {
	req := AdminLoginRequest{Email: email, Password: password}
	if err := req.Validate(svc.validate); err != nil {
		return AdminLogin{}, err
	}

	var resp AdminLogin
	if err := svc.backend.Do(ctx, http.MethodPost, "/admin/login", req, &resp, core.Anonymous()); err != nil {
		return AdminLogin{}, loginError(err, msgInvalidCredentials)
	}
	if resp.Token == "" || resp.Admin.ID == 0 {
		return AdminLogin{}, errMalformedResponse
	}

	sess := session.Session{
		Token: resp.Token,
		Role:  session.RoleAdmin,
		Identity: session.Identity{
			ID:         resp.Admin.ID,
			Name:       resp.Admin.Name,
			SchoolName: resp.Admin.SchoolName,
		},
	}
	if err := svc.sess.Update(sess); err != nil {
		return AdminLogin{}, errors.Wrap(err, "saving session")
	}
	svc.logger.Info("admin login", sess.Identity)
	return resp, nil
}

// Logout notifies the backend and always clears the local session, whatever the network outcome.
// A failed notification is logged and returned for information; a failure to clear the
// local session takes precedence.
func (svc *Service) Logout(ctx context.Context) (err error) {
	defer func() {
		if cerr := svc.sess.Clear(); cerr != nil {
			err = cerr
		}
	}()

	if svc.sess.Token() == "" {
		return nil
	}
	if err := svc.backend.Do(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		svc.logger.Warn("logout request failed", err)
		return errors.Wrap(err, "notifying logout")
	}
	return nil
}

// loginError turns a refusal of the credentials into an AuthError.
func loginError(err error, msg string) error {
	switch core.StatusCode(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnprocessableEntity:
		if ae, ok := errors.Cause(err).(*core.APIError); ok && ae.Message != "" {
			msg = ae.Message
		}
		return core.NewAuthError(msg, err)
	}
	return errors.Wrap(err, "logging in")
}
