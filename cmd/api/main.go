package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/publicid"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	redisRepo "github.com/cmlabs-hris/attendance-backend-go/internal/repository/redis"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	serviceCompany "github.com/cmlabs-hris/attendance-backend-go/internal/service/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/leave"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	userService "github.com/cmlabs-hris/attendance-backend-go/internal/service/user"
	"golang.org/x/time/rate"
)

const (
	appName    = "attendance-backend"
	appVersion = "v1.0.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)
	response.ExposeErrorDetails(!cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	// Redis is optional. Without it reports are not cached and logout only
	// drops the token on the client.
	var (
		complianceCache report.ComplianceCache
		invalidator     report.Invalidator
		denylist        auth.TokenDenylist
	)
	if cfg.Redis.URL != "" {
		rdb, err := redisRepo.Connect(ctx, cfg.Redis.URL, 5)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()

		cache := redisRepo.NewReportCache(rdb)
		complianceCache = cache
		invalidator = cache
		denylist = redisRepo.NewTokenDenylist(rdb)
	} else {
		slog.Warn("REDIS_URL not set, report cache and token denylist disabled")
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("init local storage: %w", err)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email service: %w", err)
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	loc := cfg.Location()

	authSvc := serviceAuth.NewAuthService(txManager, userRepo, companyRepo, JWTService, denylist, emailService, googleService, serviceAuth.Options{
		FrontendURL:     cfg.App.FrontendURL,
		VerificationTTL: cfg.JWT.VerificationTokenExpiry,
	})
	attendanceSvc := attendanceService.NewAttendanceService(txManager, attendanceRepo, userRepo, invalidator, loc, cfg.Report.ShortBreakMarker)
	leaveSvc := leave.NewLeaveService(leaveRequestRepo, invalidator)
	reportSvc := reportService.NewReportService(attendanceRepo, leaveRequestRepo, userRepo, companyRepo, complianceCache, reportService.Config{
		Location:         loc,
		ShortBreakMarker: cfg.Report.ShortBreakMarker,
		CacheTTL:         cfg.Report.CacheTTL,
	})
	adminSvc := userService.NewAdminService(txManager, userRepo)
	companySvc := serviceCompany.NewCompanyService(companyRepo, file.NewFileService(fileStorage), publicid.NewGenerator(cfg.Security.PublicIDSecret))

	authLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)

	scheduler := cron.NewScheduler(ctx)
	cron.NewMaintenanceJobs(userRepo, 30*time.Minute, authLimiter).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			UploadsDir:     fileStorage.BasePath(),
		},
		JWTService,
		denylist,
		authLimiter,
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(authSvc, cfg.App.FrontendURL, cfg.IsProduction()),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Leave:      appHTTP.NewLeaveHandler(leaveSvc),
			Report:     appHTTP.NewReportHandler(reportSvc),
			User:       appHTTP.NewUserHandler(adminSvc),
			Company:    appHTTP.NewCompanyHandler(companySvc),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
