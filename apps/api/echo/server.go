package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
	"github.com/escolarapp/escolar/core/report"
	"github.com/escolarapp/escolar/core/subject"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		SubjectSvc *subject.Service
		AccountSvc *account.Service
		ReportSvc  *report.Service

		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

// appTranslator renders validator messages; set once when the server is built.
var appTranslator ut.Translator

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	appTranslator = s.opts.Translator

	// the frontend calls Django-style paths with trailing slashes
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(s.app, jwt, s.opts.AccountSvc, s.opts.Validate)
	registerSubjectAPI(s.app, jwt, s.opts.SubjectSvc, s.opts.Validate)
	registerAccountAPI(s.app, jwt, s.opts.AccountSvc, s.opts.Validate)
	registerReportAPI(s.app, jwt, s.opts.ReportSvc)
}

func (s *server) Start() {
	go func() {
		<-s.shutdown
		s.app.Logger.Error("fatal error detected, shutting down")
		_ = s.Stop(context.Background())
	}()
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Bienvenido a la API Escolar!")
}
