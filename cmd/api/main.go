package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/natsbus"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/ratelimit"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	serviceCompany "github.com/cmlabs-hris/attendance-backend-go/internal/service/company"
	dashboardService "github.com/cmlabs-hris/attendance-backend-go/internal/service/dashboard"
	holidayService "github.com/cmlabs-hris/attendance-backend-go/internal/service/holiday"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/master"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
	overtimeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/overtime"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	userService "github.com/cmlabs-hris/attendance-backend-go/internal/service/user"
	"github.com/go-chi/httplog/v3"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	clk := clock.New()
	timeout := cfg.Database.QueryTimeout

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	balanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	overtimeRepo := postgresql.NewOvertimeRequestRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	positionRepo := postgresql.NewPositionRepository(db)
	jobRepo := postgresql.NewJobRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.JWT.SecureCookies, clk)
	if err != nil {
		log.Fatal("Invalid JWT configuration: ", err)
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(oauth.GoogleConfig{
			ClientID:     cfg.OAuth2Google.ClientID,
			ClientSecret: cfg.OAuth2Google.ClientSecret,
			RedirectURL:  cfg.OAuth2Google.RedirectURL,
			Scopes:       cfg.OAuth2Google.Scopes,
		})
	}

	// Rate limiting is shared through Redis; without it the endpoints are unlimited.
	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		limiter = ratelimit.NewRedisLimiter(redisClient, "")
	} else {
		slog.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	var bus notification.Bus
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("attendance-api"))
		if err != nil {
			log.Fatal("Failed to connect to NATS: ", err)
		}
		defer nc.Drain()
		bus = natsbus.New(nc, cfg.NATS.Subject)
	}

	hub := sse.NewHub[notification.NotificationResponse](16)
	notifService, err := notificationService.NewNotificationService(
		notificationRepo,
		notificationService.NewRecipientResolver(userRepo),
		hub,
		bus,
		clk,
		cfg.Notification,
	)
	if err != nil {
		log.Fatal("Failed to start notification service: ", err)
	}

	authService := serviceAuth.NewAuthService(
		txManager,
		userRepo,
		companyRepo,
		balanceRepo,
		refreshTokenRepo,
		JWTService,
		serviceAuth.Defaults{Company: cfg.Defaults.Company, Leave: cfg.Defaults.Leave},
		timeout,
	)
	userSvc := userService.NewUserService(userRepo, companyRepo, balanceRepo, txManager, cfg.Defaults.Leave, timeout)
	companyService := serviceCompany.NewCompanyService(companyRepo, timeout)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, companyRepo, clk, timeout)
	leaveService := leave.NewLeaveService(leaveRequestRepo, balanceRepo, txManager, notifService, clk, timeout)
	overtimeSvc := overtimeService.NewOvertimeService(overtimeRepo, txManager, notifService, clk, timeout)
	holidaySvc := holidayService.NewHolidayService(holidayRepo, notifService, clk, timeout)
	masterService := master.NewMasterService(departmentRepo, positionRepo, jobRepo, timeout)
	reportSvc := reportService.NewReportService(reportRepo, companyRepo, clk, timeout)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, companyRepo, holidayRepo, attendanceRepo, balanceRepo, clk, timeout)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.AllowedOrigins,
			Limiter:        limiter,
			LoginLimit:     cfg.RateLimit.Login,
			RegisterLimit:  cfg.RateLimit.Register,
			RefreshLimit:   cfg.RateLimit.Refresh,
			ClockLimit:     cfg.RateLimit.Clock,
		},
		JWTService,
		appHTTP.Handlers{
			Auth:         appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.App.FrontendURL, cfg.JWT.SecureCookies),
			User:         appHTTP.NewUserHandler(userSvc),
			Company:      appHTTP.NewCompanyHandler(companyService),
			Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
			Leave:        appHTTP.NewLeaveHandler(leaveService),
			Overtime:     appHTTP.NewOvertimeHandler(overtimeSvc),
			Holiday:      appHTTP.NewHolidayHandler(holidaySvc),
			Master:       appHTTP.NewMasterHandler(masterService),
			Notification: appHTTP.NewNotificationHandler(notifService, JWTService, cfg.App.AllowedOrigins),
			Report:       appHTTP.NewReportHandler(reportSvc),
			Dashboard:    appHTTP.NewDashboardHandler(dashboardSvc),
		},
	)

	scheduler := cron.NewScheduler(logger, cfg.Jobs.RunTimeout)
	cron.NewAttendanceJobs(attendanceRepo, notifService, clk, cfg.Jobs.StaleSessionAfter, cfg.Jobs.StaleSessionInterval).RegisterJobs(scheduler)
	cron.NewApprovalJobs(leaveRequestRepo, overtimeRepo, notifService, cfg.Jobs.PendingApprovalInterval).RegisterJobs(scheduler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)

	go func() {
		slog.Info("Server running", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	// Closing the hub ends open streams so Shutdown does not wait on them.
	slog.Info("Closing notification streams", "subscribers", hub.TotalSubscribers(), "dropped_events", hub.Dropped())
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown", "error", err)
	}
	scheduler.Stop()
	notifService.Stop()
}

func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "cmlabs-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)
}
