package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/onboarding-api/docs"
	"github.com/99minutos/onboarding-api/internal/api/handler"
	"github.com/99minutos/onboarding-api/internal/api/middleware"
	"github.com/99minutos/onboarding-api/internal/core/domain"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

const (
	apiPrefix = "/api/v1"
	bodyLimit = "6M"
)

// Options carries the transport-level settings of the router.
type Options struct {
	// Debug exposes underlying error text in error responses.
	Debug       bool
	Cookies     handler.CookieConfig
	PublicURL   string
	CORSOrigins []string
	Readiness   map[string]handler.ReadinessCheck

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(authService ports.AuthService, userService ports.UserService, log zerolog.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log, opts.Debug)

	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "onboarding",
		Subsystem:  "http",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowCredentials: !allowsAnyOrigin(opts.CORSOrigins),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(authService, opts.Cookies, opts.PublicURL)
	userHandler := handler.NewUserHandler(userService, opts.Cookies)
	healthHandler := handler.NewHealthHandler(opts.Readiness)

	authn := middleware.Auth(authService)
	active := middleware.ActiveAccount()
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	v1 := e.Group(apiPrefix)

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.PATCH("/reset-password/:token", authHandler.ResetPassword)
	auth.GET("/verify-email/:token", authHandler.VerifyEmail)
	auth.PATCH("/update-password", authHandler.UpdatePassword, authn, active)
	auth.POST("/logout", authHandler.Logout, authn)

	// --- Self-service routes ---
	users := v1.Group("/users", authn, active)
	users.GET("/me", userHandler.GetMe)
	users.PATCH("/update-me", userHandler.UpdateMe)
	users.DELETE("/delete-me", userHandler.DeleteMe)
	users.PATCH("/complete-onboarding", userHandler.CompleteOnboarding)
	users.PATCH("/preferences", userHandler.UpdatePreferences)
	users.PUT("/me/photo", userHandler.UploadPhoto)

	// --- Admin routes ---
	users.GET("", userHandler.ListUsers, adminOnly)
	users.GET("/", userHandler.ListUsers, adminOnly)
	users.GET("/:id", userHandler.GetUser, adminOnly)
	users.PATCH("/:id", userHandler.UpdateUser, adminOnly)
	users.DELETE("/:id", userHandler.DeleteUser, adminOnly)

	// --- Health probes (no auth required) ---
	v1.GET("/health", healthHandler.Liveness)
	v1.GET("/health/ready", healthHandler.Readiness)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			} else if v.Status >= http.StatusBadRequest {
				evt = log.Warn()
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
