package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetDailyStats returns members, attended, late and currently open in a single query
func (r *dashboardRepositoryImpl) GetDailyStats(ctx context.Context, companyID string, from, to time.Time) (dashboard.DailyStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM users u WHERE u.company_id = $1) AS members,
			COUNT(DISTINCT a.user_id) AS attended,
			COUNT(DISTINCT a.user_id) FILTER (WHERE a.status = 'late') AS late,
			(SELECT COUNT(*) FROM attendances o WHERE o.company_id = $1 AND o.clock_out IS NULL) AS open_now
		FROM attendances a
		WHERE a.company_id = $1 AND a.clock_in >= $2 AND a.clock_in < $3
	`

	var stats dashboard.DailyStats
	err := q.QueryRow(ctx, query, companyID, from, to).Scan(
		&stats.Members, &stats.Attended, &stats.Late, &stats.OpenNow,
	)
	if err != nil {
		return dashboard.DailyStats{}, fmt.Errorf("failed to get daily attendance stats: %w", err)
	}
	return stats, nil
}

// GetDailyTrend returns per-day attended and late counts, days without sessions omitted
func (r *dashboardRepositoryImpl) GetDailyTrend(ctx context.Context, companyID string, from, to time.Time, tz string) ([]dashboard.DayCount, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			to_char(a.clock_in AT TIME ZONE $4, 'YYYY-MM-DD') AS day,
			COUNT(DISTINCT a.user_id) AS attended,
			COUNT(DISTINCT a.user_id) FILTER (WHERE a.status = 'late') AS late
		FROM attendances a
		WHERE a.company_id = $1 AND a.clock_in >= $2 AND a.clock_in < $3
		GROUP BY day
		ORDER BY day
	`

	rows, err := q.Query(ctx, query, companyID, from, to, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance trend: %w", err)
	}
	defer rows.Close()

	var days []dashboard.DayCount
	for rows.Next() {
		var d dashboard.DayCount
		if err := rows.Scan(&d.Date, &d.Attended, &d.Late); err != nil {
			return nil, fmt.Errorf("failed to scan attendance trend: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance trend: %w", err)
	}
	return days, nil
}

// GetPendingCounts returns pending leave and overtime counts in a single query
func (r *dashboardRepositoryImpl) GetPendingCounts(ctx context.Context, companyID string, userID *string) (dashboard.PendingCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM leave_requests l
			 WHERE l.company_id = $1 AND l.status = 'pending' AND ($2::uuid IS NULL OR l.user_id = $2)) AS leave_count,
			(SELECT COUNT(*) FROM overtime_requests o
			 WHERE o.company_id = $1 AND o.status = 'pending' AND ($2::uuid IS NULL OR o.user_id = $2)) AS overtime_count
	`

	var counts dashboard.PendingCounts
	if err := q.QueryRow(ctx, query, companyID, userID).Scan(&counts.Leave, &counts.Overtime); err != nil {
		return dashboard.PendingCounts{}, fmt.Errorf("failed to get pending request counts: %w", err)
	}
	return counts, nil
}

// GetUserMonthStats returns days attended, late sessions and closed hours for one user
func (r *dashboardRepositoryImpl) GetUserMonthStats(ctx context.Context, userID string, from, to time.Time, tz string) (dashboard.UserMonthStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(DISTINCT (a.clock_in AT TIME ZONE $4)::date) AS days_attended,
			COUNT(*) FILTER (WHERE a.status = 'late') AS late_sessions,
			COALESCE(SUM(a.total_work_hours), 0) AS worked_hours
		FROM attendances a
		WHERE a.user_id = $1 AND a.clock_in >= $2 AND a.clock_in < $3
	`

	var stats dashboard.UserMonthStats
	err := q.QueryRow(ctx, query, userID, from, to, tz).Scan(
		&stats.DaysAttended, &stats.LateSessions, &stats.WorkedHours,
	)
	if err != nil {
		return dashboard.UserMonthStats{}, fmt.Errorf("failed to get monthly attendance stats: %w", err)
	}
	return stats, nil
}
