package attendance

import "errors"

// Attendance domain errors
var (
	// Clock-in / clock-out errors
	ErrAlreadyClockedIn      = errors.New("you are already clocked in")
	ErrNoOpenClockIn         = errors.New("you have not clocked in yet")
	ErrGeofenceNotConfigured = errors.New("company geofence is not configured")
	ErrOutsideGeofence       = errors.New("you are outside the company geofence")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
)
