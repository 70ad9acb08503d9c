package master

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/job"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/position"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDepartments struct {
	items []department.Department
}

func (m *memDepartments) Create(_ context.Context, d department.Department) (department.Department, error) {
	for _, existing := range m.items {
		if existing.CompanyID == d.CompanyID && existing.Name == d.Name {
			return department.Department{}, department.ErrDepartmentNameExists
		}
	}
	d.ID = uuid.Must(uuid.NewV7()).String()
	m.items = append(m.items, d)
	return d, nil
}

func (m *memDepartments) GetByID(_ context.Context, companyID, id string) (department.Department, error) {
	for _, d := range m.items {
		if d.ID == id && d.CompanyID == companyID {
			return d, nil
		}
	}
	return department.Department{}, department.ErrDepartmentNotFound
}

func (m *memDepartments) GetByCompanyID(_ context.Context, companyID string) ([]department.Department, error) {
	var out []department.Department
	for _, d := range m.items {
		if d.CompanyID == companyID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDepartments) Update(_ context.Context, companyID string, req department.UpdateDepartmentRequest) (department.Department, error) {
	for i, d := range m.items {
		if d.ID == req.ID && d.CompanyID == companyID {
			if req.Name != nil {
				m.items[i].Name = *req.Name
			}
			if req.Description != nil {
				m.items[i].Description = req.Description
			}
			return m.items[i], nil
		}
	}
	return department.Department{}, department.ErrDepartmentNotFound
}

func (m *memDepartments) Delete(_ context.Context, companyID, id string) error {
	for i, d := range m.items {
		if d.ID == id && d.CompanyID == companyID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return department.ErrDepartmentNotFound
}

type memPositions struct {
	items []position.Position
}

func (m *memPositions) Create(_ context.Context, p position.Position) (position.Position, error) {
	p.ID = fmt.Sprintf("pos-%d", len(m.items)+1)
	m.items = append(m.items, p)
	return p, nil
}

func (m *memPositions) GetByID(context.Context, string, string) (position.Position, error) {
	return position.Position{}, position.ErrPositionNotFound
}

func (m *memPositions) GetByCompanyID(context.Context, string) ([]position.Position, error) {
	return m.items, nil
}

func (m *memPositions) Update(context.Context, string, position.UpdatePositionRequest) (position.Position, error) {
	return position.Position{}, position.ErrPositionNotFound
}

func (m *memPositions) Delete(context.Context, string, string) error {
	return position.ErrPositionNotFound
}

type memJobs struct {
	items []job.Job
}

func (m *memJobs) Create(_ context.Context, j job.Job) (job.Job, error) {
	for _, existing := range m.items {
		if existing.DepartmentID == j.DepartmentID && existing.Title == j.Title {
			return job.Job{}, job.ErrJobTitleExists
		}
	}
	j.ID = uuid.Must(uuid.NewV7()).String()
	m.items = append(m.items, j)
	return j, nil
}

func (m *memJobs) GetByID(_ context.Context, companyID, id string) (job.Job, error) {
	for _, j := range m.items {
		if j.ID == id && j.CompanyID == companyID {
			return j, nil
		}
	}
	return job.Job{}, job.ErrJobNotFound
}

func (m *memJobs) List(_ context.Context, companyID string, departmentID *string) ([]job.Job, error) {
	var out []job.Job
	for _, j := range m.items {
		if j.CompanyID == companyID && (departmentID == nil || j.DepartmentID == *departmentID) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *memJobs) Update(_ context.Context, companyID string, req job.UpdateJobRequest) (job.Job, error) {
	for i, j := range m.items {
		if j.ID == req.ID && j.CompanyID == companyID {
			if req.DepartmentID != nil {
				m.items[i].DepartmentID = *req.DepartmentID
			}
			if req.Title != nil {
				m.items[i].Title = *req.Title
			}
			if req.Description != nil {
				m.items[i].Description = req.Description
			}
			return m.items[i], nil
		}
	}
	return job.Job{}, job.ErrJobNotFound
}

func (m *memJobs) Delete(_ context.Context, companyID, id string) error {
	for i, j := range m.items {
		if j.ID == id && j.CompanyID == companyID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return job.ErrJobNotFound
}

var (
	admin    = user.Identity{UserID: "admin-1", CompanyID: "company-1", Role: user.RoleAdmin}
	employee = user.Identity{UserID: "user-1", CompanyID: "company-1", Role: user.RoleUser}
	outsider = user.Identity{UserID: "admin-2", CompanyID: "company-2", Role: user.RoleAdmin}
)

func TestDepartments(t *testing.T) {
	svc := NewMasterService(&memDepartments{}, &memPositions{}, &memJobs{}, time.Second)
	ctx := context.Background()

	_, err := svc.CreateDepartment(ctx, employee, department.CreateDepartmentRequest{Name: "Engineering"})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	created, err := svc.CreateDepartment(ctx, admin, department.CreateDepartmentRequest{Name: "  Engineering "})
	require.NoError(t, err)
	assert.Equal(t, "Engineering", created.Name)

	_, err = svc.CreateDepartment(ctx, admin, department.CreateDepartmentRequest{Name: "Engineering"})
	assert.ErrorIs(t, err, department.ErrDepartmentNameExists)

	_, err = svc.CreateDepartment(ctx, admin, department.CreateDepartmentRequest{Name: ""})
	assert.Error(t, err)

	list, err := svc.ListDepartments(ctx, employee)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.ListDepartments(ctx, outsider)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	assert.ErrorIs(t, svc.DeleteDepartment(ctx, outsider, created.ID), department.ErrDepartmentNotFound)
	assert.NoError(t, svc.DeleteDepartment(ctx, admin, created.ID))
}

func TestPositions(t *testing.T) {
	svc := NewMasterService(&memDepartments{}, &memPositions{}, &memJobs{}, time.Second)
	ctx := context.Background()

	desc := "writes code"
	created, err := svc.CreatePosition(ctx, admin, position.CreatePositionRequest{Name: "Engineer", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "company-1", created.CompanyID)
	require.NotNil(t, created.Description)

	_, err = svc.UpdatePosition(ctx, admin, position.UpdatePositionRequest{ID: "not-a-uuid"})
	assert.Error(t, err)

	assert.ErrorIs(t, svc.DeletePosition(ctx, employee, created.ID), user.ErrAdminPrivilegeRequired)
}

func TestJobs(t *testing.T) {
	svc := NewMasterService(&memDepartments{}, &memPositions{}, &memJobs{}, time.Second)
	ctx := context.Background()

	engineering, err := svc.CreateDepartment(ctx, admin, department.CreateDepartmentRequest{Name: "Engineering"})
	require.NoError(t, err)
	sales, err := svc.CreateDepartment(ctx, admin, department.CreateDepartmentRequest{Name: "Sales"})
	require.NoError(t, err)
	foreign, err := svc.CreateDepartment(ctx, outsider, department.CreateDepartmentRequest{Name: "Ops"})
	require.NoError(t, err)

	_, err = svc.CreateJob(ctx, employee, job.CreateJobRequest{DepartmentID: engineering.ID, Title: "Backend"})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = svc.CreateJob(ctx, admin, job.CreateJobRequest{DepartmentID: foreign.ID, Title: "Backend"})
	assert.ErrorIs(t, err, department.ErrDepartmentNotFound)

	backend, err := svc.CreateJob(ctx, admin, job.CreateJobRequest{DepartmentID: engineering.ID, Title: " Backend "})
	require.NoError(t, err)
	assert.Equal(t, "Backend", backend.Title)
	assert.Equal(t, engineering.ID, backend.DepartmentID)

	_, err = svc.CreateJob(ctx, admin, job.CreateJobRequest{DepartmentID: engineering.ID, Title: "Backend"})
	assert.ErrorIs(t, err, job.ErrJobTitleExists)

	_, err = svc.CreateJob(ctx, admin, job.CreateJobRequest{DepartmentID: sales.ID, Title: "Account Manager"})
	require.NoError(t, err)

	all, err := svc.ListJobs(ctx, employee, job.JobFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inEngineering, err := svc.ListJobs(ctx, employee, job.JobFilter{DepartmentID: &engineering.ID})
	require.NoError(t, err)
	require.Len(t, inEngineering, 1)
	assert.Equal(t, backend.ID, inEngineering[0].ID)

	bad := "dep-1"
	_, err = svc.ListJobs(ctx, employee, job.JobFilter{DepartmentID: &bad})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "department_id", verrs[0].Field)

	_, err = svc.UpdateJob(ctx, admin, job.UpdateJobRequest{ID: backend.ID, DepartmentID: &foreign.ID})
	assert.ErrorIs(t, err, department.ErrDepartmentNotFound)

	moved, err := svc.UpdateJob(ctx, admin, job.UpdateJobRequest{ID: backend.ID, DepartmentID: &sales.ID})
	require.NoError(t, err)
	assert.Equal(t, sales.ID, moved.DepartmentID)

	list, err := svc.ListJobs(ctx, outsider, job.JobFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	assert.ErrorIs(t, svc.DeleteJob(ctx, outsider, backend.ID), job.ErrJobNotFound)
	assert.NoError(t, svc.DeleteJob(ctx, admin, backend.ID))
}
