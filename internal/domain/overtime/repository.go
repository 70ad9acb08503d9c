package overtime

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
)

// OvertimeRequestRepository - interface for overtime_requests table
type OvertimeRequestRepository interface {
	workflow.Store[OvertimeRequest]
	CountPendingByCompany(ctx context.Context) (map[string]int64, error)
}
