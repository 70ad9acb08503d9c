package leave

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
)

type LeaveType string

const (
	LeaveTypeSick   LeaveType = "sick"
	LeaveTypeAnnual LeaveType = "annual"
	LeaveTypeUnpaid LeaveType = "unpaid"
)

func AllLeaveTypes() []LeaveType {
	return []LeaveType{LeaveTypeSick, LeaveTypeAnnual, LeaveTypeUnpaid}
}

func (t LeaveType) IsValid() bool {
	switch t {
	case LeaveTypeSick, LeaveTypeAnnual, LeaveTypeUnpaid:
		return true
	}
	return false
}

type Duration string

const (
	DurationFull      Duration = "full"
	DurationMorning   Duration = "morning"
	DurationAfternoon Duration = "afternoon"
)

func (d Duration) IsValid() bool {
	switch d {
	case DurationFull, DurationMorning, DurationAfternoon:
		return true
	}
	return false
}

// LeaveRequest entity
type LeaveRequest struct {
	ID        string
	UserID    string
	CompanyID string
	LeaveType LeaveType
	Duration  Duration

	StartDate time.Time
	EndDate   time.Time

	// Points is the request-time estimate, PointsDebited what approval took.
	Points        float64
	PointsDebited *float64

	Reason     string
	Status     workflow.Status
	ApprovedBy *string
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	UserName *string
}

func (r LeaveRequest) GetID() string              { return r.ID }
func (r LeaveRequest) GetUserID() string          { return r.UserID }
func (r LeaveRequest) GetCompanyID() string       { return r.CompanyID }
func (r LeaveRequest) GetStatus() workflow.Status { return r.Status }

// LedgerEntry is one append-only balance movement.
type LedgerEntry struct {
	ID             string
	UserID         string
	LeaveType      LeaveType
	LeaveRequestID *string
	Delta          float64
	BalanceAfter   float64
	Note           string
	CreatedBy      *string
	CreatedAt      time.Time
}
