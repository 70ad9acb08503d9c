package attendance

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *ClockRequest) Point() geofence.Point {
	return geofence.Point{Latitude: r.Latitude, Longitude: r.Longitude}
}

func (r *ClockRequest) Validate() error {
	return r.Point().Validate()
}

type AttendanceResponse struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	UserName          *string        `json:"user_name,omitempty"`
	Date              string         `json:"date"`
	ClockInTime       string         `json:"clock_in_time"`
	ClockOutTime      *string        `json:"clock_out_time,omitempty"`
	ClockInLatitude   float64        `json:"clock_in_latitude"`
	ClockInLongitude  float64        `json:"clock_in_longitude"`
	ClockOutLatitude  *float64       `json:"clock_out_latitude,omitempty"`
	ClockOutLongitude *float64       `json:"clock_out_longitude,omitempty"`
	Geofence          geofence.Fence `json:"geofence"`
	TotalWorkHours    *float64       `json:"total_work_hours,omitempty"`
	Status            string         `json:"status"`
	IsLate            bool           `json:"is_late"`
	IsOpen            bool           `json:"is_open"`
	CreatedAt         string         `json:"created_at"`
	UpdatedAt         string         `json:"updated_at"`
}

type AttendanceFilter struct {
	CompanyID string  `json:"-"`
	UserID    *string `json:"user_id,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, late, absent, on_leave",
		})
	}

	if f.UserID != nil && !validator.IsValidUUID(*f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid UUID",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) == 0 && f.StartDate != nil && f.EndDate != nil && *f.StartDate != "" && *f.EndDate != "" {
		if *f.EndDate < *f.StartDate {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}
