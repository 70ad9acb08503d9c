package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/geofence"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusOnLeave Status = "on_leave"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusOnLeave:
		return true
	}
	return false
}

// Attendance is one work session. It is open until ClockOut is set and is
// never modified after that.
type Attendance struct {
	ID                string
	UserID            string
	CompanyID         string
	ClockIn           time.Time
	ClockInLatitude   float64
	ClockInLongitude  float64
	ClockOut          *time.Time
	ClockOutLatitude  *float64
	ClockOutLongitude *float64
	Fence             geofence.Fence // snapshot taken at clock-in
	Status            Status
	TotalWorkHours    *float64
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	UserName *string
}

func (a Attendance) IsOpen() bool {
	return a.ClockOut == nil
}

// Closing carries the clock-out values written to an open record.
type Closing struct {
	ClockOut       time.Time
	Latitude       float64
	Longitude      float64
	TotalWorkHours float64
}

// WorkHours is the absolute session length in hours, rounded to 2 decimals.
func WorkHours(clockIn, clockOut time.Time) float64 {
	d := clockOut.Sub(clockIn)
	if d < 0 {
		d = -d
	}
	return RoundHours(d.Hours())
}

func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
