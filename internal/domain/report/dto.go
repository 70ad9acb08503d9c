package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const maxRangeDays = 366

// ========================================
// ATTENDANCE REPORT
// ========================================

type AttendanceReportRequest struct {
	StartDate string  `json:"start_date"` // YYYY-MM-DD
	EndDate   string  `json:"end_date"`   // YYYY-MM-DD, inclusive
	UserID    *string `json:"user_id,omitempty"`
}

func (r *AttendanceReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.StartDate == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if r.EndDate == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if r.UserID != nil && !validator.IsValidUUID(*r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	start, end := r.Range(time.UTC)
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return ErrRangeTooLong
	}
	return nil
}

// Range returns the report window in loc as [start, end) where end is the
// midnight after EndDate. Call Validate first.
func (r *AttendanceReportRequest) Range(loc *time.Location) (time.Time, time.Time) {
	start, _ := time.ParseInLocation("2006-01-02", r.StartDate, loc)
	end, _ := time.ParseInLocation("2006-01-02", r.EndDate, loc)
	return start, end.AddDate(0, 0, 1)
}

type AttendanceReport struct {
	CompanyName string `json:"company_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Timezone    string `json:"timezone"`
	GeneratedAt string `json:"generated_at"`

	Users []UserAttendance `json:"users"`
}

type UserAttendance struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`

	Summary   AttendanceSummary    `json:"summary"`
	DailyLogs []AttendanceDailyLog `json:"daily_logs"`

	Entries []AttendanceEntry `json:"-"`
}

// AttendanceEntry is one raw session as stored.
type AttendanceEntry struct {
	ClockIn        time.Time
	ClockOut       *time.Time
	Status         string
	TotalWorkHours *float64
}

type AttendanceSummary struct {
	TotalWorkDays  int     `json:"total_work_days"`
	TotalWorkHours float64 `json:"total_work_hours"`
	TotalPresent   int     `json:"total_present"`
	TotalLate      int     `json:"total_late"`
	TotalOpen      int     `json:"total_open"`
}

type AttendanceDailyLog struct {
	Date           string   `json:"date"`
	DayOfWeek      string   `json:"day_of_week"`
	ClockIn        string   `json:"clock_in"`
	ClockOut       *string  `json:"clock_out"`
	Status         string   `json:"status"`
	TotalWorkHours *float64 `json:"total_work_hours"`
}

// ========================================
// LEAVE BALANCE REPORT
// ========================================

type LeaveBalanceReport struct {
	GeneratedAt string            `json:"generated_at"`
	Rows        []LeaveBalanceRow `json:"rows"`
}

type LeaveBalanceRow struct {
	UserID          string  `json:"user_id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Sick            float64 `json:"sick"`
	Annual          float64 `json:"annual"`
	Unpaid          float64 `json:"unpaid"`
	PendingRequests int     `json:"pending_requests"`
}

// ========================================
// EXPORT
// ========================================

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func (f Format) IsValid() bool {
	return f == FormatXLSX || f == FormatPDF
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
