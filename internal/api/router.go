package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/learnhub/course-portal/docs"
	"github.com/learnhub/course-portal/internal/api/handler"
	"github.com/learnhub/course-portal/internal/api/middleware"
	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/ports"
	"github.com/learnhub/course-portal/internal/infrastructure/http/handlers"
	"github.com/learnhub/course-portal/internal/pkg/config"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Courses  ports.CourseService
	Auth     ports.AuthService
	Sessions ports.SessionStore

	// Readiness lists the backing services probed by /health/ready.
	Readiness map[string]handlers.Pinger

	// Registerer receives the HTTP request metrics. Nil means the default
	// Prometheus registry.
	Registerer prometheus.Registerer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = handler.NewRenderer()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	sessions := middleware.NewSessions(d.Sessions, cfg.SessionTTL, cfg.IsProduction(), d.Log)
	e.Use(session.Middleware(middleware.CookieStore(cfg.SecretKey)))
	e.Use(sessions.Load())

	// --- Handlers ---
	web := handler.NewWebHandler(d.Courses, d.Auth, sessions, cfg.LoginMode, d.Log)
	courses := handler.NewCourseHandler(d.Courses, d.Log)
	auth := handler.NewAuthHandler(d.Auth)

	loggedIn := middleware.Chain(middleware.HTMLDeny, middleware.Authenticated())
	educatorPage := middleware.Chain(middleware.HTMLDeny, middleware.Authenticated(), middleware.RequireRole(domain.RoleEducator))

	// --- Pages ---
	e.GET("/", web.Index)
	e.GET("/login", web.LoginForm)
	e.POST("/login", web.Login)
	e.GET("/logout", web.Logout)
	e.POST("/logout", web.Logout)
	e.GET("/dashboard", web.Dashboard, loggedIn)
	e.POST("/course/add", web.AddCourse, educatorPage)
	e.POST("/course/update/:id", web.UpdateCourse, educatorPage)
	e.POST("/course/delete/:id", web.DeleteCourse, educatorPage)

	// --- JSON API ---
	identity := middleware.BearerAuth(cfg.JWTSecret)
	if cfg.APIAuthMode == config.APIAuthPayload {
		d.Log.Warn().Msg("API_AUTH_MODE=payload: API callers choose their own role; do not expose this deployment")
		identity = middleware.PayloadRole(d.Log)
	}
	educatorAPI := []echo.MiddlewareFunc{
		identity,
		middleware.Chain(middleware.JSONDeny, middleware.Authenticated(), middleware.RequireRole(domain.RoleEducator)),
	}

	e.GET("/courses", courses.List)
	e.POST("/courses", courses.Create, educatorAPI...)
	e.PUT("/courses/:id", courses.Update, educatorAPI...)
	e.DELETE("/courses/:id", courses.Delete, educatorAPI...)
	e.GET("/search", courses.Search)
	e.POST("/auth/token", auth.Token)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
