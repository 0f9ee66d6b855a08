package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-core-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

type RouterConfig struct {
	AllowedOrigins []string
	// LoginRateLimit is the number of login attempts allowed per IP per minute.
	LoginRateLimit int
	Environment    string
	// Production switches to verbose ECS logs and enforces the security headers strictly.
	Production bool
	Version    string
	LogLevel   slog.Level
}

func NewRouter(cfg RouterConfig, authService auth.AuthService, authHandler AuthHandler, attendanceHandler AttendanceHandler, leaveHandler LeaveHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(!cfg.Production)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-core"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Environment),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      !cfg.Production,
	}).Handler)

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	loginLimit := cfg.LoginRateLimit
	if loginLimit <= 0 {
		loginLimit = 10
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.With(httprate.Limit(loginLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).
				Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)

			r.With(middleware.AuthRequired(authService)).Get("/me", authHandler.Me)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRequired(authService))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/", attendanceHandler.Record)
				r.Get("/", attendanceHandler.List)
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", leaveHandler.Submit)
				r.Get("/", leaveHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", leaveHandler.Get)
					r.Post("/submit", leaveHandler.SubmitDraft)

					// Admin or manager only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireApprover)
						r.Patch("/", leaveHandler.Decide)
						r.Patch("/approve", leaveHandler.Approve)
						r.Patch("/deny", leaveHandler.Deny)
					})
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Resource not found")
	})
	return r
}
