package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"golang.org/x/sync/errgroup"
)

// upcomingWindow is how far ahead holidays are listed.
const upcomingWindow = 30

type companyGetter interface {
	GetByID(ctx context.Context, id string) (company.Company, error)
}

type holidayLister interface {
	ListByYear(ctx context.Context, companyID string, year int) ([]holiday.Holiday, error)
}

type openSessionGetter interface {
	GetOpenByUser(ctx context.Context, userID string) (attendance.Attendance, error)
}

type balanceGetter interface {
	Get(ctx context.Context, userID string) (leave.Balance, error)
}

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	companyRepo    companyGetter
	holidayRepo    holidayLister
	attendanceRepo openSessionGetter
	balanceRepo    balanceGetter
	clock          clock.Clock
	timeout        time.Duration
}

func NewDashboardService(
	repo dashboard.DashboardRepository,
	companyRepo companyGetter,
	holidayRepo holidayLister,
	attendanceRepo openSessionGetter,
	balanceRepo balanceGetter,
	clk clock.Clock,
	timeout time.Duration,
) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		companyRepo:         companyRepo,
		holidayRepo:         holidayRepo,
		attendanceRepo:      attendanceRepo,
		balanceRepo:         balanceRepo,
		clock:               clk,
		timeout:             timeout,
	}
}

// parseDate parses YYYY-MM-DD in loc, defaults to today
func parseDate(date string, now time.Time, loc *time.Location) (time.Time, error) {
	if date == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, dashboard.ErrInvalidDate
	}
	return parsed, nil
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return attendance.RoundHours(float64(part) / float64(total) * 100)
}

// GetCompanyDashboard returns combined dashboard data using parallel goroutines
func (s *DashboardServiceImpl) GetCompanyDashboard(ctx context.Context, identity user.Identity, date string) (dashboard.CompanyDashboardResponse, error) {
	if !identity.IsAdmin() {
		return dashboard.CompanyDashboardResponse{}, user.ErrAdminPrivilegeRequired
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	c, err := s.companyRepo.GetByID(ctx, identity.CompanyID)
	if err != nil {
		return dashboard.CompanyDashboardResponse{}, err
	}
	loc := c.Location()
	day, err := parseDate(date, s.clock.Now(), loc)
	if err != nil {
		return dashboard.CompanyDashboardResponse{}, err
	}
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)

	var (
		stats    dashboard.DailyStats
		pending  dashboard.PendingCounts
		trend    []dashboard.DayCount
		holidays []dashboard.UpcomingHoliday
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats, err = s.GetDailyStats(gCtx, identity.CompanyID, day, day.AddDate(0, 0, 1))
		return err
	})

	g.Go(func() error {
		var err error
		pending, err = s.GetPendingCounts(gCtx, identity.CompanyID, nil)
		return err
	})

	g.Go(func() error {
		var err error
		trend, err = s.GetDailyTrend(gCtx, identity.CompanyID, monthStart, monthStart.AddDate(0, 1, 0), loc.String())
		return err
	})

	g.Go(func() error {
		var err error
		holidays, err = s.upcomingHolidays(gCtx, identity.CompanyID, day)
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboard.CompanyDashboardResponse{}, err
	}

	trendResp := make([]dashboard.DailyTrendResponse, 0, len(trend))
	for _, d := range trend {
		trendResp = append(trendResp, dashboard.DailyTrendResponse{Date: d.Date, Attended: d.Attended, Late: d.Late})
	}

	return dashboard.CompanyDashboardResponse{
		Date:     day.Format("2006-01-02"),
		Timezone: loc.String(),
		AttendanceStats: dashboard.AttendanceStatsResponse{
			Members:        stats.Members,
			Attended:       stats.Attended,
			OnTime:         stats.Attended - stats.Late,
			Late:           stats.Late,
			Absent:         max(stats.Members-stats.Attended, 0),
			OpenNow:        stats.OpenNow,
			AttendanceRate: percent(stats.Attended, stats.Members),
			LateRate:       percent(stats.Late, stats.Attended),
		},
		PendingRequests:  pendingResponse(pending),
		MonthlyTrend:     trendResp,
		UpcomingHolidays: holidays,
	}, nil
}

// GetMyDashboard returns the caller's month at a glance
func (s *DashboardServiceImpl) GetMyDashboard(ctx context.Context, identity user.Identity) (dashboard.MyDashboardResponse, error) {
	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	c, err := s.companyRepo.GetByID(ctx, identity.CompanyID)
	if err != nil {
		return dashboard.MyDashboardResponse{}, err
	}
	loc := c.Location()
	now := s.clock.Now()
	today, _ := parseDate("", now, loc)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)

	var (
		open     *dashboard.OpenSessionResponse
		month    dashboard.UserMonthStats
		balance  leave.Balance
		pending  dashboard.PendingCounts
		holidays []dashboard.UpcomingHoliday
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		session, err := s.attendanceRepo.GetOpenByUser(gCtx, identity.UserID)
		if errors.Is(err, attendance.ErrNoOpenClockIn) {
			return nil
		}
		if err != nil {
			return err
		}
		open = &dashboard.OpenSessionResponse{
			ID:          session.ID,
			ClockInTime: session.ClockIn.In(loc).Format(time.RFC3339),
			Status:      string(session.Status),
			HoursSoFar:  attendance.WorkHours(session.ClockIn, now),
		}
		return nil
	})

	g.Go(func() error {
		var err error
		month, err = s.GetUserMonthStats(gCtx, identity.UserID, monthStart, monthStart.AddDate(0, 1, 0), loc.String())
		return err
	})

	g.Go(func() error {
		var err error
		balance, err = s.balanceRepo.Get(gCtx, identity.UserID)
		if err != nil {
			return fmt.Errorf("failed to get leave balance: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		pending, err = s.GetPendingCounts(gCtx, identity.CompanyID, &identity.UserID)
		return err
	})

	g.Go(func() error {
		var err error
		holidays, err = s.upcomingHolidays(gCtx, identity.CompanyID, today)
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboard.MyDashboardResponse{}, err
	}

	return dashboard.MyDashboardResponse{
		Month:       today.Format("2006-01"),
		OpenSession: open,
		MonthSummary: dashboard.MonthSummaryResponse{
			DaysAttended: month.DaysAttended,
			LateSessions: month.LateSessions,
			WorkedHours:  attendance.RoundHours(month.WorkedHours),
		},
		LeaveBalances:    balance.ToMap(),
		PendingRequests:  pendingResponse(pending),
		UpcomingHolidays: holidays,
	}, nil
}

// upcomingHolidays lists holidays in [day, day+upcomingWindow), crossing into
// next year when the window does.
func (s *DashboardServiceImpl) upcomingHolidays(ctx context.Context, companyID string, day time.Time) ([]dashboard.UpcomingHoliday, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, upcomingWindow)

	years := []int{from.Year()}
	if to.Year() != from.Year() {
		years = append(years, to.Year())
	}

	result := []dashboard.UpcomingHoliday{}
	for _, year := range years {
		list, err := s.holidayRepo.ListByYear(ctx, companyID, year)
		if err != nil {
			return nil, fmt.Errorf("failed to list holidays: %w", err)
		}
		for _, h := range list {
			d := time.Date(h.Date.Year(), h.Date.Month(), h.Date.Day(), 0, 0, 0, 0, time.UTC)
			if d.Before(from) || !d.Before(to) {
				continue
			}
			result = append(result, dashboard.UpcomingHoliday{
				ID:       h.ID,
				Name:     h.Name,
				Date:     d.Format("2006-01-02"),
				DaysLeft: int(d.Sub(from).Hours() / 24),
			})
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func pendingResponse(p dashboard.PendingCounts) dashboard.PendingRequestsResponse {
	return dashboard.PendingRequestsResponse{
		Leave:    p.Leave,
		Overtime: p.Overtime,
		Total:    p.Leave + p.Overtime,
	}
}
