package report

import (
	"context"
	"time"
)

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// GetAttendanceRows returns every member of the company with the sessions
	// clocked in within [from, to). Members without sessions have no entries.
	GetAttendanceRows(ctx context.Context, companyID string, from, to time.Time, userID *string) ([]UserAttendance, error)

	GetLeaveBalanceRows(ctx context.Context, companyID string) ([]LeaveBalanceRow, error)
}
