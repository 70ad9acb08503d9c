package department

import "context"

type DepartmentRepository interface {
	Create(ctx context.Context, department Department) (Department, error)
	GetByID(ctx context.Context, companyID, id string) (Department, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]Department, error)
	Update(ctx context.Context, companyID string, req UpdateDepartmentRequest) (Department, error)
	Delete(ctx context.Context, companyID, id string) error
}
