package overtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateOvertimeRequest struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Hours  float64 `json:"hours"`
	Reason string  `json:"reason"`

	date time.Time
}

func (r *CreateOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.Hours < MinHours {
		errs = append(errs, validator.ValidationError{
			Field:   "hours",
			Message: fmt.Sprintf("hours must be at least %v", MinHours),
		})
	} else if r.Hours > MaxHours {
		errs = append(errs, validator.ValidationError{
			Field:   "hours",
			Message: fmt.Sprintf("hours must not exceed %v", MaxHours),
		})
	}

	if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.Reason = strings.TrimSpace(r.Reason)
	r.date = date
	return nil
}

// ParsedDate is only meaningful after Validate succeeded.
func (r *CreateOvertimeRequest) ParsedDate() time.Time {
	return r.date
}

type OvertimeRequestResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	UserName   *string `json:"user_name,omitempty"`
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	Reason     string  `json:"reason,omitempty"`
	Status     string  `json:"status"`
	ApprovedBy *string `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type ListOvertimeRequestResponse struct {
	TotalCount       int64                     `json:"total_count"`
	Page             int                       `json:"page"`
	Limit            int                       `json:"limit"`
	TotalPages       int                       `json:"total_pages"`
	OvertimeRequests []OvertimeRequestResponse `json:"overtime_requests"`
}

type OvertimeRequestFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *OvertimeRequestFilter) ToWorkflow() (workflow.ListFilter, error) {
	return workflow.ParseListFilter(f.UserID, f.Status, f.StartDate, f.EndDate, f.Page, f.Limit)
}
