package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ==================== LEAVE REQUEST DTOs ====================

type CreateLeaveRequest struct {
	LeaveType string  `json:"leave_type"`
	Duration  string  `json:"duration"`
	StartDate string  `json:"start_date"`         // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"` // YYYY-MM-DD, defaults to start_date
	Reason    string  `json:"reason"`

	// Parsed by Validate
	start time.Time
	end   time.Time
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !LeaveType(r.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of: sick, annual, unpaid",
		})
	}

	if !Duration(r.Duration).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "duration",
			Message: "duration must be one of: full, morning, afternoon",
		})
	}

	start, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end := start
	if r.EndDate != nil && *r.EndDate != "" {
		parsed, ok := validator.IsValidDate(*r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
		end = parsed
	}

	if len(errs) == 0 && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
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
	r.start, r.end = start, end
	return nil
}

// Dates returns the parsed range. Only meaningful after Validate succeeded.
func (r *CreateLeaveRequest) Dates() (time.Time, time.Time) {
	return r.start, r.end
}

type LeaveRequestResponse struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	UserName      *string  `json:"user_name,omitempty"`
	LeaveType     string   `json:"leave_type"`
	Duration      string   `json:"duration"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Points        float64  `json:"points"`
	PointsDebited *float64 `json:"points_debited,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	Status        string   `json:"status"`
	ApprovedBy    *string  `json:"approved_by,omitempty"`
	ApprovedAt    *string  `json:"approved_at,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}

// LeaveRequestFilter - query params for listing. Dates filter on submission day.
type LeaveRequestFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *LeaveRequestFilter) Validate() error {
	_, err := f.ToWorkflow()
	return err
}

// ToWorkflow converts the query into the engine filter. EndDate is inclusive.
func (f *LeaveRequestFilter) ToWorkflow() (workflow.ListFilter, error) {
	return workflow.ParseListFilter(f.UserID, f.Status, f.StartDate, f.EndDate, f.Page, f.Limit)
}

// ==================== BALANCE DTOs ====================

type BalanceResponse struct {
	UserID   string             `json:"user_id"`
	Balances map[string]float64 `json:"balances"`
}

type LedgerEntryResponse struct {
	ID             string  `json:"id"`
	LeaveType      string  `json:"leave_type"`
	LeaveRequestID *string `json:"leave_request_id,omitempty"`
	Delta          float64 `json:"delta"`
	BalanceAfter   float64 `json:"balance_after"`
	Note           string  `json:"note,omitempty"`
	CreatedBy      *string `json:"created_by,omitempty"`
	CreatedAt      string  `json:"created_at"`
}
