package company

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type CompanyServiceImpl struct {
	company.CompanyRepository
	timeout time.Duration
}

func NewCompanyService(repo company.CompanyRepository, timeout time.Duration) company.CompanyService {
	return &CompanyServiceImpl{
		CompanyRepository: repo,
		timeout:           timeout,
	}
}

// GetMine implements company.CompanyService.
func (c *CompanyServiceImpl) GetMine(ctx context.Context, identity user.Identity) (company.CompanyResponse, error) {
	ctx, cancel := database.Bound(ctx, c.timeout)
	defer cancel()

	found, err := c.CompanyRepository.GetByID(ctx, identity.CompanyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return MapCompany(found), nil
}

// Update implements company.CompanyService.
func (c *CompanyServiceImpl) Update(ctx context.Context, identity user.Identity, req company.UpdateCompanyRequest) (company.CompanyResponse, error) {
	if !identity.IsAdmin() {
		return company.CompanyResponse{}, company.ErrNotCompanyOwnerAdmin
	}
	if req.IsEmpty() {
		return company.CompanyResponse{}, company.ErrEmptyPatch
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, c.timeout)
	defer cancel()

	updated, err := c.CompanyRepository.Update(ctx, identity.CompanyID, req)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return MapCompany(updated), nil
}

// GetWorkingHours implements company.CompanyService.
func (c *CompanyServiceImpl) GetWorkingHours(ctx context.Context, identity user.Identity) (company.WorkingHours, error) {
	ctx, cancel := database.Bound(ctx, c.timeout)
	defer cancel()

	found, err := c.CompanyRepository.GetByID(ctx, identity.CompanyID)
	if err != nil {
		return company.WorkingHours{}, err
	}
	return found.WorkingHours, nil
}

// SetWorkingHours implements company.CompanyService.
func (c *CompanyServiceImpl) SetWorkingHours(ctx context.Context, identity user.Identity, req company.SetWorkingHoursRequest) (company.WorkingHours, error) {
	if !identity.IsAdmin() {
		return company.WorkingHours{}, company.ErrNotCompanyOwnerAdmin
	}
	if err := req.Validate(); err != nil {
		return company.WorkingHours{}, err
	}

	ctx, cancel := database.Bound(ctx, c.timeout)
	defer cancel()

	updated, err := c.CompanyRepository.UpdateWorkingHours(ctx, identity.CompanyID, company.WorkingHours{
		Start: req.Start,
		End:   req.End,
	})
	if err != nil {
		return company.WorkingHours{}, err
	}
	return updated.WorkingHours, nil
}

// SetGeofence implements company.CompanyService.
func (c *CompanyServiceImpl) SetGeofence(ctx context.Context, identity user.Identity, req company.SetGeofenceRequest) (company.CompanyResponse, error) {
	if !identity.IsAdmin() {
		return company.CompanyResponse{}, company.ErrNotCompanyOwnerAdmin
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, c.timeout)
	defer cancel()

	updated, err := c.CompanyRepository.UpdateGeofence(ctx, identity.CompanyID, req.Fence())
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return MapCompany(updated), nil
}

func MapCompany(c company.Company) company.CompanyResponse {
	return company.CompanyResponse{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		Industry:        c.Industry,
		ContactNumber:   c.ContactNumber,
		Website:         c.Website,
		EstablishedYear: c.EstablishedYear,
		OwnerID:         c.OwnerID,
		Geofence:        c.Geofence,
		WorkingHours:    c.WorkingHours,
		Timezone:        c.Timezone,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
