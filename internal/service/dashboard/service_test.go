package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboardRepo struct {
	mu          sync.Mutex
	stats       dashboard.DailyStats
	trend       []dashboard.DayCount
	pending     dashboard.PendingCounts
	month       dashboard.UserMonthStats
	statsFrom   time.Time
	trendTZ     string
	pendingUser *string
}

func (r *fakeDashboardRepo) GetDailyStats(_ context.Context, _ string, from, _ time.Time) (dashboard.DailyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statsFrom = from
	return r.stats, nil
}

func (r *fakeDashboardRepo) GetDailyTrend(_ context.Context, _ string, _, _ time.Time, tz string) ([]dashboard.DayCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trendTZ = tz
	return r.trend, nil
}

func (r *fakeDashboardRepo) GetPendingCounts(_ context.Context, _ string, userID *string) (dashboard.PendingCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingUser = userID
	return r.pending, nil
}

func (r *fakeDashboardRepo) GetUserMonthStats(_ context.Context, _ string, _, _ time.Time, _ string) (dashboard.UserMonthStats, error) {
	return r.month, nil
}

type fakeCompanies struct{ c company.Company }

func (f fakeCompanies) GetByID(_ context.Context, id string) (company.Company, error) {
	if id != f.c.ID {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return f.c, nil
}

type fakeHolidays map[int][]holiday.Holiday

func (f fakeHolidays) ListByYear(_ context.Context, _ string, year int) ([]holiday.Holiday, error) {
	return f[year], nil
}

type fakeOpen struct{ session *attendance.Attendance }

func (f fakeOpen) GetOpenByUser(_ context.Context, _ string) (attendance.Attendance, error) {
	if f.session == nil {
		return attendance.Attendance{}, attendance.ErrNoOpenClockIn
	}
	return *f.session, nil
}

type fakeBalances struct{}

func (fakeBalances) Get(_ context.Context, _ string) (leave.Balance, error) {
	return leave.Balance{leave.LeaveTypeSick: 7, leave.LeaveTypeAnnual: 12.5}, nil
}

var (
	admin  = user.Identity{UserID: "admin-1", CompanyID: "company-1", Role: user.RoleAdmin}
	member = user.Identity{UserID: "user-1", CompanyID: "company-1", Role: user.RoleUser}
)

func holidayOn(id, name, date string) holiday.Holiday {
	d, _ := time.Parse("2006-01-02", date)
	return holiday.Holiday{ID: id, CompanyID: "company-1", Name: name, Date: d}
}

func newService(repo *fakeDashboardRepo, open fakeOpen, now time.Time) dashboard.DashboardService {
	holidays := fakeHolidays{
		2025: {
			holidayOn("h-1", "Past", "2025-12-01"),
			holidayOn("h-2", "Human Rights Day", "2025-12-10"),
		},
		2026: {
			holidayOn("h-3", "New Year", "2026-01-01"),
			holidayOn("h-4", "Too far", "2026-02-01"),
		},
	}
	comp := fakeCompanies{c: company.Company{ID: "company-1", Name: "Acme", Timezone: "Asia/Phnom_Penh"}}
	return NewDashboardService(repo, comp, holidays, open, fakeBalances{}, clock.NewFixed(now), time.Second)
}

func TestGetCompanyDashboard(t *testing.T) {
	repo := &fakeDashboardRepo{
		stats:   dashboard.DailyStats{Members: 8, Attended: 6, Late: 3, OpenNow: 2},
		trend:   []dashboard.DayCount{{Date: "2025-12-05", Attended: 6, Late: 3}},
		pending: dashboard.PendingCounts{Leave: 2, Overtime: 1},
	}
	// 20:00 UTC is already the next day in Phnom Penh (UTC+7)
	now := time.Date(2025, 12, 4, 20, 0, 0, 0, time.UTC)
	svc := newService(repo, fakeOpen{}, now)

	resp, err := svc.GetCompanyDashboard(context.Background(), admin, "")
	require.NoError(t, err)

	assert.Equal(t, "2025-12-05", resp.Date)
	assert.Equal(t, "Asia/Phnom_Penh", resp.Timezone)
	assert.Equal(t, "Asia/Phnom_Penh", repo.trendTZ)
	assert.True(t, repo.statsFrom.Equal(time.Date(2025, 12, 4, 17, 0, 0, 0, time.UTC)))

	stats := resp.AttendanceStats
	assert.Equal(t, int64(3), stats.OnTime)
	assert.Equal(t, int64(2), stats.Absent)
	assert.Equal(t, 75.0, stats.AttendanceRate)
	assert.Equal(t, 50.0, stats.LateRate)

	assert.Nil(t, repo.pendingUser)
	assert.Equal(t, int64(3), resp.PendingRequests.Total)
	require.Len(t, resp.MonthlyTrend, 1)

	require.Len(t, resp.UpcomingHolidays, 2)
	assert.Equal(t, "h-2", resp.UpcomingHolidays[0].ID)
	assert.Equal(t, 5, resp.UpcomingHolidays[0].DaysLeft)
	assert.Equal(t, "2026-01-01", resp.UpcomingHolidays[1].Date)
}

func TestGetCompanyDashboard_Validation(t *testing.T) {
	svc := newService(&fakeDashboardRepo{}, fakeOpen{}, time.Date(2025, 12, 4, 8, 0, 0, 0, time.UTC))

	_, err := svc.GetCompanyDashboard(context.Background(), member, "")
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = svc.GetCompanyDashboard(context.Background(), admin, "05/12/2025")
	assert.ErrorIs(t, err, dashboard.ErrInvalidDate)

	resp, err := svc.GetCompanyDashboard(context.Background(), admin, "2025-12-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", resp.Date)
	assert.Zero(t, resp.AttendanceStats.AttendanceRate, "no members means no rate")
}

func TestGetMyDashboard(t *testing.T) {
	now := time.Date(2025, 12, 4, 5, 30, 0, 0, time.UTC)
	session := &attendance.Attendance{
		ID:      "att-1",
		UserID:  "user-1",
		ClockIn: now.Add(-3 * time.Hour),
		Status:  attendance.StatusLate,
	}
	repo := &fakeDashboardRepo{
		month:   dashboard.UserMonthStats{DaysAttended: 3, LateSessions: 1, WorkedHours: 23.456},
		pending: dashboard.PendingCounts{Leave: 1},
	}
	svc := newService(repo, fakeOpen{session: session}, now)

	resp, err := svc.GetMyDashboard(context.Background(), member)
	require.NoError(t, err)

	assert.Equal(t, "2025-12", resp.Month)
	require.NotNil(t, resp.OpenSession)
	assert.Equal(t, 3.0, resp.OpenSession.HoursSoFar)
	assert.Equal(t, "late", resp.OpenSession.Status)
	assert.Equal(t, 23.46, resp.MonthSummary.WorkedHours)
	assert.Equal(t, 12.5, resp.LeaveBalances["annual"])
	assert.Equal(t, 0.0, resp.LeaveBalances["unpaid"])
	require.NotNil(t, repo.pendingUser)
	assert.Equal(t, "user-1", *repo.pendingUser)
	assert.Equal(t, int64(1), resp.PendingRequests.Total)
}

func TestGetMyDashboard_NoOpenSession(t *testing.T) {
	svc := newService(&fakeDashboardRepo{}, fakeOpen{}, time.Date(2025, 12, 4, 5, 30, 0, 0, time.UTC))

	resp, err := svc.GetMyDashboard(context.Background(), member)
	require.NoError(t, err)
	assert.Nil(t, resp.OpenSession)
}
