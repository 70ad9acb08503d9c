package overtime

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
)

const (
	MinHours = 0.5
	MaxHours = 24.0
)

// OvertimeRequest entity
type OvertimeRequest struct {
	ID         string
	UserID     string
	CompanyID  string
	Date       time.Time
	Hours      float64
	Reason     string
	Status     workflow.Status
	ApprovedBy *string
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Relationships (for responses)
	UserName *string
}

func (r OvertimeRequest) GetID() string              { return r.ID }
func (r OvertimeRequest) GetUserID() string          { return r.UserID }
func (r OvertimeRequest) GetCompanyID() string       { return r.CompanyID }
func (r OvertimeRequest) GetStatus() workflow.Status { return r.Status }
