package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         AuthHandler
	User         UserHandler
	Company      CompanyHandler
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Overtime     OvertimeHandler
	Holiday      HolidayHandler
	Master       MasterHandler
	Notification NotificationHandler
	Report       ReportHandler
	Dashboard    DashboardHandler
}

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string

	// Limiter may be nil, which disables rate limiting.
	Limiter       ratelimit.Limiter
	LoginLimit    ratelimit.Rule
	RegisterLimit ratelimit.Rule
	RefreshLimit  ratelimit.Rule
	ClockLimit    ratelimit.Rule
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	rateLimit := func(name string, rule ratelimit.Rule, key middleware.KeyFunc) func(http.Handler) http.Handler {
		return middleware.RateLimit(cfg.Limiter, name, rule, key)
	}
	authenticated := func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimit("register", cfg.RegisterLimit, middleware.KeyByIP)).Post("/register", h.Auth.Register)
			r.With(rateLimit("refresh", cfg.RefreshLimit, middleware.KeyByIP)).Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", h.Auth.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.With(rateLimit("login", cfg.LoginLimit, middleware.KeyByIP)).Post("/", h.Auth.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", h.Auth.LoginWithGoogle)
				})
			})

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Post("/sse-token", h.Auth.SSEToken)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			// Stream tokens are passed as ?token= and checked by the handler.
			r.Get("/stream", h.Notification.Stream)
			r.Get("/ws", h.Notification.StreamWS)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Delete("/{id}", h.Notification.Delete)
				r.Get("/preferences", h.Notification.GetPreferences)
				r.Put("/preferences", h.Notification.UpdatePreference)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", h.User.Me)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionUserManage))
					r.Get("/", h.User.List)
					r.Post("/", h.User.Create)
					r.Get("/{id}", h.User.Get)
					r.Patch("/{id}", h.User.Update)
					r.Delete("/{id}", h.User.Delete)
				})
			})

			r.Route("/company", func(r chi.Router) {
				r.Get("/", h.Company.GetMine)
				r.Get("/working-hours", h.Company.GetWorkingHours)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCompanyManage))
					r.Patch("/", h.Company.Update)
					r.Put("/working-hours", h.Company.SetWorkingHours)
					r.Put("/geofence", h.Company.SetGeofence)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(rateLimit("clock", cfg.ClockLimit, middleware.KeyByUser))
					r.Post("/clock-in", h.Attendance.ClockIn)
					r.Post("/clock-out", h.Attendance.ClockOut)
				})
				r.Get("/open", h.Attendance.GetOpenSession)
				r.Get("/my", h.Attendance.GetMyAttendance)
				r.Get("/{id}", h.Attendance.Get)

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.List)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/balance", h.Leave.GetMyBalance)
				r.Get("/ledger", h.Leave.GetMyLedger)

				r.Route("/requests", func(r chi.Router) {
					r.Post("/", h.Leave.CreateRequest)
					r.Get("/my", h.Leave.GetMyRequests)
					r.Get("/{id}", h.Leave.GetRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionRequestDecide))
						r.Get("/", h.Leave.ListRequests)
						r.Post("/{id}/approve", h.Leave.ApproveRequest)
						r.Post("/{id}/reject", h.Leave.RejectRequest)
					})
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/balances/{userID}", h.Leave.GetBalance)
					r.Get("/ledgers/{userID}", h.Leave.GetLedger)
				})
			})

			r.Route("/overtime/requests", func(r chi.Router) {
				r.Post("/", h.Overtime.CreateRequest)
				r.Get("/my", h.Overtime.GetMyRequests)
				r.Get("/{id}", h.Overtime.GetRequest)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionRequestDecide))
					r.Get("/", h.Overtime.ListRequests)
					r.Post("/{id}/approve", h.Overtime.ApproveRequest)
					r.Post("/{id}/reject", h.Overtime.RejectRequest)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.Holiday.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionHolidayManage))
					r.Post("/", h.Holiday.Create)
					r.Delete("/{id}", h.Holiday.Delete)
				})
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.Master.ListDepartments)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Master.CreateDepartment)
					r.Put("/{id}", h.Master.UpdateDepartment)
					r.Delete("/{id}", h.Master.DeleteDepartment)
				})
			})

			r.Route("/positions", func(r chi.Router) {
				r.Get("/", h.Master.ListPositions)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Master.CreatePosition)
					r.Put("/{id}", h.Master.UpdatePosition)
					r.Delete("/{id}", h.Master.DeletePosition)
				})
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", h.Master.ListJobs)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Master.CreateJob)
					r.Put("/{id}", h.Master.UpdateJob)
					r.Delete("/{id}", h.Master.DeleteJob)
				})
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/me", h.Dashboard.GetMyDashboard)
				r.With(middleware.RequirePermission(user.PermissionReportsView)).Get("/", h.Dashboard.GetCompanyDashboard)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/attendance", h.Report.GetAttendanceReport)
				r.With(chiMiddleware.Timeout(2*time.Minute)).Get("/attendance/export", h.Report.ExportAttendanceReport)
				r.Get("/leave-balance", h.Report.GetLeaveBalanceReport)
			})
		})
	})
	return r
}
