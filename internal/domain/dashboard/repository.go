package dashboard

import (
	"context"
	"time"
)

// DashboardRepository runs the aggregate queries behind the dashboards.
// Each method is one round trip.
type DashboardRepository interface {
	// GetDailyStats counts distinct members with a session starting in [from, to).
	GetDailyStats(ctx context.Context, companyID string, from, to time.Time) (DailyStats, error)
	// GetDailyTrend groups sessions in [from, to) by local day in tz.
	GetDailyTrend(ctx context.Context, companyID string, from, to time.Time, tz string) ([]DayCount, error)
	// GetPendingCounts counts pending requests, limited to userID when it is set.
	GetPendingCounts(ctx context.Context, companyID string, userID *string) (PendingCounts, error)
	GetUserMonthStats(ctx context.Context, userID string, from, to time.Time, tz string) (UserMonthStats, error)
}
