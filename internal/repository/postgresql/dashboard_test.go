package postgresql

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_GetDailyStats(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewDashboardRepository(db)

	from := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	mock.ExpectQuery(`FROM attendances a`).
		WithArgs("company-1", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"members", "attended", "late", "open_now"}).
			AddRow(int64(10), int64(7), int64(2), int64(4)))

	stats, err := repo.GetDailyStats(context.Background(), "company-1", from, to)

	require.NoError(t, err)
	assert.Equal(t, dashboard.DailyStats{Members: 10, Attended: 7, Late: 2, OpenNow: 4}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboard_GetDailyTrend(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewDashboardRepository(db)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery(`GROUP BY day`).
		WithArgs("company-1", from, to, "Asia/Phnom_Penh").
		WillReturnRows(pgxmock.NewRows([]string{"day", "attended", "late"}).
			AddRow("2025-03-03", int64(5), int64(1)).
			AddRow("2025-03-04", int64(6), int64(0)))

	days, err := repo.GetDailyTrend(context.Background(), "company-1", from, to, "Asia/Phnom_Penh")

	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, dashboard.DayCount{Date: "2025-03-03", Attended: 5, Late: 1}, days[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboard_GetPendingCounts(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewDashboardRepository(db)

	userID := "user-1"
	mock.ExpectQuery(`FROM leave_requests l`).
		WithArgs("company-1", &userID).
		WillReturnRows(pgxmock.NewRows([]string{"leave_count", "overtime_count"}).AddRow(int64(1), int64(3)))

	counts, err := repo.GetPendingCounts(context.Background(), "company-1", &userID)

	require.NoError(t, err)
	assert.Equal(t, dashboard.PendingCounts{Leave: 1, Overtime: 3}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
