package company

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/geofence"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
	Create(ctx context.Context, newCompany Company) (Company, error)
	SetOwner(ctx context.Context, id, ownerID string) error
	Update(ctx context.Context, id string, req UpdateCompanyRequest) (Company, error)
	UpdateWorkingHours(ctx context.Context, id string, hours WorkingHours) (Company, error)
	UpdateGeofence(ctx context.Context, id string, fence geofence.Fence) (Company, error)
	List(ctx context.Context) ([]Company, error)
}
