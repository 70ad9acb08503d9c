package leave

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	workflow.Store[LeaveRequest]
	SetPointsDebited(ctx context.Context, id string, points float64) (LeaveRequest, error)
	CountPendingByCompany(ctx context.Context) (map[string]int64, error)
}

// BalanceRepository - interface for leave_balances and leave_ledger tables
type BalanceRepository interface {
	Get(ctx context.Context, userID string) (Balance, error)
	Init(ctx context.Context, userID string, balance Balance) error

	// Debit subtracts points in one conditional update and returns the new
	// balance. It returns ErrInsufficientBalance when the balance is too low.
	Debit(ctx context.Context, userID string, leaveType LeaveType, points float64) (float64, error)

	AppendLedger(ctx context.Context, entry LedgerEntry) error
	ListLedger(ctx context.Context, userID string, limit int) ([]LedgerEntry, error)
}
