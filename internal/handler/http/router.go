package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	// UploadsDir is served at /uploads when set.
	UploadsDir string
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Report     ReportHandler
	User       UserHandler
	Company    CompanyHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, denylist auth.TokenDenylist, authLimiter *middleware.IPRateLimiter, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CompanyHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	if cfg.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/setup", h.Auth.Setup)
			r.Post("/verify-email", h.Auth.VerifyEmail)
			r.Get("/google/login", h.Auth.LoginWithGoogle)
			r.Get("/google/callback", h.Auth.OAuthCallbackGoogle)

			r.Group(func(r chi.Router) {
				if authLimiter != nil {
					r.Use(middleware.RateLimitByIP(authLimiter))
				}
				r.Post("/login", h.Auth.Login)
				r.Post("/register", h.Auth.Register)
				r.Post("/resend-verification", h.Auth.ResendVerification)
			})

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(denylist))
				r.Post("/logout", h.Auth.Logout)
				r.Get("/me", h.Auth.Me)
				r.Put("/profile", h.Auth.UpdateProfile)
				r.Put("/password", h.Auth.ChangePassword)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(denylist))
			r.Use(middleware.CompanyScope)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", h.Attendance.ClockIn)
				r.Post("/clock-out", h.Attendance.ClockOut)
				r.Get("/today", h.Attendance.Today)
				r.Get("/records", h.Attendance.List)
				r.Get("/summary", h.Attendance.Summary)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Post("/", h.Leave.Create)
				r.Get("/", h.Leave.List)
				r.Get("/{id}", h.Leave.Get)
				r.Put("/{id}", h.Leave.Update)
				r.With(middleware.RequireAdmin).Put("/{id}/status", h.Leave.UpdateStatus)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/user/{userId}", h.Report.GetUserMonthly)
				r.Get("/export", h.Report.Export)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/department", h.Report.GetDepartment)
					r.Get("/company/compliance", h.Report.GetCompanyCompliance)
				})
			})

			r.Route("/admin/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", h.User.List)
				r.Post("/", h.User.Create)
				r.Get("/{id}", h.User.Get)
				r.Put("/{id}", h.User.Update)
				r.Delete("/{id}", h.User.Delete)
			})
		})

		r.Route("/companies", func(r chi.Router) {
			r.Get("/public/{publicId}", h.Company.GetPublic)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(denylist))
				r.Use(middleware.CompanyScope)

				r.Get("/{id}", h.Company.GetByID)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", h.Company.List)
					r.Put("/{id}", h.Company.Update)
					r.Post("/{id}/logo", h.Company.UploadLogo)
				})

				// Super admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSuperAdmin)
					r.Post("/", h.Company.Create)
					r.Delete("/{id}", h.Company.Delete)
				})
			})
		})
	})
	return r
}
