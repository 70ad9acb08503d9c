package company

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type CompanyService interface {
	GetMine(ctx context.Context, identity user.Identity) (CompanyResponse, error)
	Update(ctx context.Context, identity user.Identity, req UpdateCompanyRequest) (CompanyResponse, error)
	GetWorkingHours(ctx context.Context, identity user.Identity) (WorkingHours, error)
	SetWorkingHours(ctx context.Context, identity user.Identity, req SetWorkingHoursRequest) (WorkingHours, error)
	SetGeofence(ctx context.Context, identity user.Identity, req SetGeofenceRequest) (CompanyResponse, error)
}
