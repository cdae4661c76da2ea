package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/riandyrn/otelchi"
)

const (
	apiTitle   = "devportal"
	apiVersion = "0.1.0"
)

// RouterConfig holds everything NewRouter needs.
type RouterConfig struct {
	ServiceName string
	JWTSecret   string
	CORSOrigins []string
	Logger      *slog.Logger
	LogLevel    slog.Level
	Handlers    Handlers

	// TrustProxyHeaders rewrites the client address from X-Forwarded-For and
	// X-Real-IP. Otherwise rate limits and logs use the TCP peer address.
	TrustProxyHeaders bool
}

// NewTokenAuth returns the HS256 verifier for bearer tokens.
func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil, jwt.WithAcceptableSkew(30*time.Second))
}

// NewRouter builds the chi router with the middleware stack and mounts the
// Huma API on it.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		router.Use(middleware.RealIP)
	}
	router.Use(otelchi.Middleware(cfg.ServiceName, otelchi.WithChiRoutes(router)))
	router.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(jwtauth.Verifier(NewTokenAuth(cfg.JWTSecret)))

	config := huma.DefaultConfig(apiTitle, apiVersion)
	if config.Components.SecuritySchemes == nil {
		config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	config.Components.SecuritySchemes[bearerScheme] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}

	api := humachi.New(router, config)
	Register(api, cfg.Handlers)

	return router
}
