package leave

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type LeaveService interface {
	// Request workflow
	Submit(ctx context.Context, identity user.Identity, req CreateLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, identity user.Identity, id string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, identity user.Identity, id string) (LeaveRequestResponse, error)
	Get(ctx context.Context, identity user.Identity, id string) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, identity user.Identity, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListAll(ctx context.Context, identity user.Identity, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)

	// Balance
	GetBalance(ctx context.Context, identity user.Identity, userID string) (BalanceResponse, error)
	ListLedger(ctx context.Context, identity user.Identity, userID string) ([]LedgerEntryResponse, error)
}
