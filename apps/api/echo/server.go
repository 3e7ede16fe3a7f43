// Package echoapi serves the Safari REST API with echo.
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

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Services       *catalog.Services
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *Auth
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     NewAuth(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Pre(s.auth.sessionCookie())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{conf.FrontendBaseURL},
		AllowCredentials: true,
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	svcs := s.deps.Services
	api := s.app.Group("/api")

	registerUserAPI(api, s.auth, svcs.Users, s.deps.Validate, s.deps.Translator, s.deps.Logger)

	public := access{publicList: true, publicDetail: true}
	editors := []string{user.RoleStaff, user.RoleStaffEditor}
	registerResource(api, s.auth, conf, catalog.Universities, catalog.UniversitySpec, svcs.Universities, public, editors...)
	registerResource(api, s.auth, conf, catalog.Programs, catalog.ProgramSpec, svcs.Programs, public, editors...)
	registerResource(api, s.auth, conf, catalog.Courses, catalog.CourseSpec, svcs.Courses, public, editors...)
	registerResource(api, s.auth, conf, catalog.Tests, catalog.TestSpec, svcs.Tests, public, editors...)
	registerResource(api, s.auth, conf, catalog.Events, catalog.EventSpec, svcs.Events, public, editors...)
	registerResource(api, s.auth, conf, catalog.Pages, catalog.PageSpec, svcs.Pages, public, editors...)
	registerResource(api, s.auth, conf, catalog.HeroSlides, catalog.HeroSlideSpec, svcs.HeroSlides, access{publicList: true}, editors...)

	registerAppointmentAPI(api, s.auth, conf, svcs.Appointments, s.deps.Validate)
	registerSettingsAPI(api, s.auth, svcs.Settings, svcs.Setup)
}

// Start listens on the configured address. Failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the owner of the Server to shut it down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// Auth returns the token issuer of the Server.
func (s *Server) Auth() *Auth {
	return s.auth
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
