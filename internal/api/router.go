package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cbtutils/novedades/docs"
	"github.com/cbtutils/novedades/internal/api/handler"
	"github.com/cbtutils/novedades/internal/api/middleware"
	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Registry may be nil, in which
// case the default Prometheus registry is used.
type Deps struct {
	Auth          ports.AuthService
	Users         ports.UserService
	Announcements ports.AnnouncementService
	Entities      ports.EntityService
	EntityTypes   ports.EntityTypeService
	Tokens        middleware.TokenVerifier
	Stream        handler.Subscriber
	Readiness     map[string]handler.Pinger
	CORSOrigin    string
	StreamPing    time.Duration
	Registry      *prometheus.Registry
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{d.CORSOrigin},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			handler.HeaderIdempotencyKey,
		},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "novedades",
		Subsystem:                 "http",
		Registerer:                registerer,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/ws"
		},
	}))

	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	announcementHandler := handler.NewAnnouncementHandler(d.Announcements)
	entityHandler := handler.NewEntityHandler(d.Entities)
	entityTypeHandler := handler.NewEntityTypeHandler(d.EntityTypes)
	streamHandler := handler.NewStreamHandler(d.Stream, d.CORSOrigin, d.StreamPing, d.Logger)

	protected := []echo.MiddlewareFunc{middleware.Auth(d.Tokens), middleware.RBAC(domain.RoleAdmin)}

	// --- Auth routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Users ---
	users := e.Group("/users", protected...)
	users.GET("", userHandler.List)
	users.PUT("/:id", userHandler.ChangePassword)
	users.DELETE("/:id", userHandler.Delete)

	// --- Entity types ---
	e.GET("/tipos_entidades", entityTypeHandler.List)
	e.POST("/tipos_entidades", entityTypeHandler.Create, protected...)
	e.PUT("/tipos_entidades/:id", entityTypeHandler.Update, protected...)
	e.DELETE("/tipos_entidades/:id", entityTypeHandler.Delete, protected...)

	// --- Entities ---
	e.GET("/entidades", entityHandler.List)
	e.POST("/entidades", entityHandler.Create, protected...)
	e.PUT("/entidades/:id", entityHandler.Update, protected...)
	e.DELETE("/entidades/:id", entityHandler.Delete, protected...)

	// --- Announcements (creation stays public) ---
	e.GET("/novedades", announcementHandler.List)
	e.POST("/novedades", announcementHandler.Create)
	e.PUT("/novedades/:id", announcementHandler.Update, protected...)
	e.DELETE("/novedades/:id", announcementHandler.Delete, protected...)

	// --- Live stream ---
	e.GET("/ws", streamHandler.Serve)

	// --- Health checks, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(d.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
