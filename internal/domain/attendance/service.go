package attendance

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// ClockIn opens a session after the geofence and lateness checks
	ClockIn(ctx context.Context, identity user.Identity, req ClockRequest) (AttendanceResponse, error)

	// ClockOut closes the caller's open session
	ClockOut(ctx context.Context, identity user.Identity, req ClockRequest) (AttendanceResponse, error)

	GetOpenSession(ctx context.Context, identity user.Identity) (AttendanceResponse, error)

	// GetMyAttendance retrieves attendance records of the caller
	GetMyAttendance(ctx context.Context, identity user.Identity, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves attendance records of the whole company (admin)
	ListAttendance(ctx context.Context, identity user.Identity, filter AttendanceFilter) (ListAttendanceResponse, error)

	GetAttendance(ctx context.Context, identity user.Identity, id string) (AttendanceResponse, error)
}
