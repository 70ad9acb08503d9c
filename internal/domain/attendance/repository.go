package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts an open record. It returns ErrAlreadyClockedIn when the
	// user already has one, as enforced by the open-session unique index.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetOpenByUser returns ErrNoOpenClockIn when the user has no open record.
	GetOpenByUser(ctx context.Context, userID string) (Attendance, error)

	// Close sets the clock-out fields of an open record in a single conditional
	// update. It returns ErrNoOpenClockIn if the record was already closed.
	Close(ctx context.Context, id string, closing Closing) (Attendance, error)

	// GetByID retrieves attendance by ID with company isolation
	GetByID(ctx context.Context, companyID, id string) (Attendance, error)

	// List retrieves attendance records with filters and pagination, newest first
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListOpenStartedBefore returns sessions still open that began before t.
	ListOpenStartedBefore(ctx context.Context, t time.Time) ([]Attendance, error)
}
