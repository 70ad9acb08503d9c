package master

import (
	"context"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/job"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/position"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

// MasterService manages the company's departments, their jobs and positions.
// Reads are open to every member, writes need an admin.
type MasterService interface {
	// Department operations
	CreateDepartment(ctx context.Context, identity user.Identity, req department.CreateDepartmentRequest) (department.DepartmentResponse, error)
	ListDepartments(ctx context.Context, identity user.Identity) ([]department.DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, identity user.Identity, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error)
	DeleteDepartment(ctx context.Context, identity user.Identity, id string) error

	// Position operations
	CreatePosition(ctx context.Context, identity user.Identity, req position.CreatePositionRequest) (position.PositionResponse, error)
	ListPositions(ctx context.Context, identity user.Identity) ([]position.PositionResponse, error)
	UpdatePosition(ctx context.Context, identity user.Identity, req position.UpdatePositionRequest) (position.PositionResponse, error)
	DeletePosition(ctx context.Context, identity user.Identity, id string) error

	// Job operations
	CreateJob(ctx context.Context, identity user.Identity, req job.CreateJobRequest) (job.JobResponse, error)
	ListJobs(ctx context.Context, identity user.Identity, filter job.JobFilter) ([]job.JobResponse, error)
	UpdateJob(ctx context.Context, identity user.Identity, req job.UpdateJobRequest) (job.JobResponse, error)
	DeleteJob(ctx context.Context, identity user.Identity, id string) error
}

type masterServiceImpl struct {
	departmentRepo department.DepartmentRepository
	positionRepo   position.PositionRepository
	jobRepo        job.JobRepository
	timeout        time.Duration
}

func NewMasterService(
	departmentRepo department.DepartmentRepository,
	positionRepo position.PositionRepository,
	jobRepo job.JobRepository,
	timeout time.Duration,
) MasterService {
	return &masterServiceImpl{
		departmentRepo: departmentRepo,
		positionRepo:   positionRepo,
		jobRepo:        jobRepo,
		timeout:        timeout,
	}
}

func requireAdmin(identity user.Identity) error {
	if !identity.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}
	return nil
}

// ==================== DEPARTMENT OPERATIONS ====================

func (s *masterServiceImpl) CreateDepartment(ctx context.Context, identity user.Identity, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return department.DepartmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	created, err := s.departmentRepo.Create(ctx, department.Department{
		CompanyID:   identity.CompanyID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		return department.DepartmentResponse{}, err
	}

	return mapDepartment(created), nil
}

func (s *masterServiceImpl) ListDepartments(ctx context.Context, identity user.Identity) ([]department.DepartmentResponse, error) {
	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	departments, err := s.departmentRepo.GetByCompanyID(ctx, identity.CompanyID)
	if err != nil {
		return nil, err
	}

	responses := make([]department.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		responses = append(responses, mapDepartment(d))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateDepartment(ctx context.Context, identity user.Identity, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return department.DepartmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	updated, err := s.departmentRepo.Update(ctx, identity.CompanyID, req)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return mapDepartment(updated), nil
}

func (s *masterServiceImpl) DeleteDepartment(ctx context.Context, identity user.Identity, id string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	return s.departmentRepo.Delete(ctx, identity.CompanyID, id)
}

// ==================== POSITION OPERATIONS ====================

func (s *masterServiceImpl) CreatePosition(ctx context.Context, identity user.Identity, req position.CreatePositionRequest) (position.PositionResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return position.PositionResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return position.PositionResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	created, err := s.positionRepo.Create(ctx, position.Position{
		CompanyID:   identity.CompanyID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		return position.PositionResponse{}, err
	}

	return mapPosition(created), nil
}

func (s *masterServiceImpl) ListPositions(ctx context.Context, identity user.Identity) ([]position.PositionResponse, error) {
	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	positions, err := s.positionRepo.GetByCompanyID(ctx, identity.CompanyID)
	if err != nil {
		return nil, err
	}

	// If no positions found, return empty list instead of error
	responses := make([]position.PositionResponse, 0, len(positions))
	for _, p := range positions {
		responses = append(responses, mapPosition(p))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdatePosition(ctx context.Context, identity user.Identity, req position.UpdatePositionRequest) (position.PositionResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return position.PositionResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return position.PositionResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	updated, err := s.positionRepo.Update(ctx, identity.CompanyID, req)
	if err != nil {
		return position.PositionResponse{}, err
	}
	return mapPosition(updated), nil
}

func (s *masterServiceImpl) DeletePosition(ctx context.Context, identity user.Identity, id string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	return s.positionRepo.Delete(ctx, identity.CompanyID, id)
}

// ==================== JOB OPERATIONS ====================

func (s *masterServiceImpl) CreateJob(ctx context.Context, identity user.Identity, req job.CreateJobRequest) (job.JobResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return job.JobResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return job.JobResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	// the department must belong to the caller's company
	if _, err := s.departmentRepo.GetByID(ctx, identity.CompanyID, req.DepartmentID); err != nil {
		return job.JobResponse{}, err
	}

	created, err := s.jobRepo.Create(ctx, job.Job{
		CompanyID:    identity.CompanyID,
		DepartmentID: req.DepartmentID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
	})
	if err != nil {
		return job.JobResponse{}, err
	}

	return mapJob(created), nil
}

func (s *masterServiceImpl) ListJobs(ctx context.Context, identity user.Identity, filter job.JobFilter) ([]job.JobResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	jobs, err := s.jobRepo.List(ctx, identity.CompanyID, filter.DepartmentID)
	if err != nil {
		return nil, err
	}

	responses := make([]job.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		responses = append(responses, mapJob(j))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateJob(ctx context.Context, identity user.Identity, req job.UpdateJobRequest) (job.JobResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return job.JobResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return job.JobResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	if req.DepartmentID != nil {
		if _, err := s.departmentRepo.GetByID(ctx, identity.CompanyID, *req.DepartmentID); err != nil {
			return job.JobResponse{}, err
		}
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}

	updated, err := s.jobRepo.Update(ctx, identity.CompanyID, req)
	if err != nil {
		return job.JobResponse{}, err
	}
	return mapJob(updated), nil
}

func (s *masterServiceImpl) DeleteJob(ctx context.Context, identity user.Identity, id string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	return s.jobRepo.Delete(ctx, identity.CompanyID, id)
}

func mapDepartment(d department.Department) department.DepartmentResponse {
	return department.DepartmentResponse{
		ID:          d.ID,
		CompanyID:   d.CompanyID,
		Name:        d.Name,
		Description: d.Description,
	}
}

func mapPosition(p position.Position) position.PositionResponse {
	return position.PositionResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		Name:        p.Name,
		Description: p.Description,
	}
}

func mapJob(j job.Job) job.JobResponse {
	return job.JobResponse{
		ID:           j.ID,
		CompanyID:    j.CompanyID,
		DepartmentID: j.DepartmentID,
		Title:        j.Title,
		Description:  j.Description,
	}
}
