package overtime

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type OvertimeService interface {
	Submit(ctx context.Context, identity user.Identity, req CreateOvertimeRequest) (OvertimeRequestResponse, error)
	Approve(ctx context.Context, identity user.Identity, id string) (OvertimeRequestResponse, error)
	Reject(ctx context.Context, identity user.Identity, id string) (OvertimeRequestResponse, error)
	Get(ctx context.Context, identity user.Identity, id string) (OvertimeRequestResponse, error)
	ListMine(ctx context.Context, identity user.Identity, filter OvertimeRequestFilter) (ListOvertimeRequestResponse, error)
	ListAll(ctx context.Context, identity user.Identity, filter OvertimeRequestFilter) (ListOvertimeRequestResponse, error)
}
