package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/conselho/core"
	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/core/session"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		SessionSvc     session.Service
		Batch          *grade.Batch
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.BodyLimit(bodyLimit(conf.Upload)))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator)
	s.app.Renderer = newTemplateRenderer(conf.AppName, conf.Debug || conf.TestMode)
	s.app.Debug = conf.Debug

	sg := s.app.Group("", s.sessionMiddleware)
	registerAuthAPI(sg, s.deps)

	ag := sg.Group("", authMiddleware)
	registerDashboardAPI(ag, s.deps)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
