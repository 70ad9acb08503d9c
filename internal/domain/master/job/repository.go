package job

import "context"

type JobRepository interface {
	Create(ctx context.Context, job Job) (Job, error)
	GetByID(ctx context.Context, companyID, id string) (Job, error)
	// List returns the company's jobs, only those of departmentID when set.
	List(ctx context.Context, companyID string, departmentID *string) ([]Job, error)
	Update(ctx context.Context, companyID string, req UpdateJobRequest) (Job, error)
	Delete(ctx context.Context, companyID, id string) error
}
