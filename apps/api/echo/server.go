package echoapi

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/farm"
)

type (
	Options struct {
		Address        string
		Debug          bool
		DisableReqLogs bool
		SecretKey      string
		TokenTTL       time.Duration
		// OverrideField and OverrideHeader carry the real verb of tunnelled POST requests.
		OverrideField  string
		OverrideHeader string

		FarmSvc    *farm.Service
		Validate   *validator.Validate
		Translator ut.Translator
		Logger     core.Logger
		Now        func() time.Time
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		tokens   *Tokens
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OverrideField == "" {
		opts.OverrideField = "_method"
	}
	if opts.OverrideHeader == "" {
		opts.OverrideHeader = echo.HeaderXHTTPMethodOverride
	}
	s := &server{
		opts:     opts,
		app:      echo.New(),
		tokens:   NewTokens(opts.SecretKey, opts.TokenTTL),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: methodFromHeaderOrBody(s.opts.OverrideHeader, s.opts.OverrideField),
	}))
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV mode
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/api/v1")
	jwt := middleware.JWTWithConfig(s.tokens.config())
	authed := []echo.MiddlewareFunc{jwt, revokedMiddleware(s.opts.FarmSvc)}

	registerAuthAPI(v1, authed, s.opts, s.tokens)
	registerClassAPI(v1, authed, s.opts)
	registerAdminAPI(v1, authed, s.opts)
}

// Start blocks until the server stops. A shutdown error caught by the error handler stops it gracefully.
func (s *server) Start() error {
	go func() {
		<-s.shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Hydrofarm API!")
}
