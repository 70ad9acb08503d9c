package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `
	id, name, description, industry, contact_number, website, established_year, owner_id,
	geofence_latitude, geofence_longitude, geofence_radius_meters,
	work_start, work_end, timezone, created_at, updated_at`

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

func scanCompany(row rowScanner) (company.Company, error) {
	var c company.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Industry, &c.ContactNumber, &c.Website, &c.EstablishedYear, &c.OwnerID,
		&c.Geofence.CenterLatitude, &c.Geofence.CenterLongitude, &c.Geofence.RadiusMeters,
		&c.WorkingHours.Start, &c.WorkingHours.End, &c.Timezone, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func companyResult(c company.Company, err error, op string) (company.Company, error) {
	if err == nil {
		return c, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return company.Company{}, company.ErrCompanyNotFound
	}
	if isUniqueViolation(err) {
		return company.Company{}, company.ErrCompanyNameExists
	}
	return company.Company{}, fmt.Errorf("failed to %s company: %w", op, err)
}

// Create implements company.CompanyRepository.
func (c *companyRepositoryImpl) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	if newCompany.ID == "" {
		newCompany.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO companies (
			id, name, description, industry, contact_number, website, established_year,
			geofence_latitude, geofence_longitude, geofence_radius_meters,
			work_start, work_end, timezone
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + companyColumns

	created, err := scanCompany(q.QueryRow(ctx, query,
		newCompany.ID,
		newCompany.Name,
		newCompany.Description,
		newCompany.Industry,
		newCompany.ContactNumber,
		newCompany.Website,
		newCompany.EstablishedYear,
		newCompany.Geofence.CenterLatitude,
		newCompany.Geofence.CenterLongitude,
		newCompany.Geofence.RadiusMeters,
		newCompany.WorkingHours.Start,
		newCompany.WorkingHours.End,
		newCompany.Timezone,
	))
	return companyResult(created, err, "create")
}

// GetByID implements company.CompanyRepository.
func (c *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	found, err := scanCompany(q.QueryRow(ctx, "SELECT "+companyColumns+" FROM companies WHERE id = $1", id))
	return companyResult(found, err, "get")
}

// SetOwner implements company.CompanyRepository.
func (c *companyRepositoryImpl) SetOwner(ctx context.Context, id, ownerID string) error {
	q := GetQuerier(ctx, c.db)

	tag, err := q.Exec(ctx, `UPDATE companies SET owner_id = $2, updated_at = NOW() WHERE id = $1`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to set company owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// Update implements company.CompanyRepository.
func (c *companyRepositoryImpl) Update(ctx context.Context, id string, req company.UpdateCompanyRequest) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	setClauses := make([]string, 0, 8)
	args := make([]any, 0, 8)
	set := func(col string, val any) {
		args = append(args, val)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Industry != nil {
		set("industry", *req.Industry)
	}
	if req.ContactNumber != nil {
		set("contact_number", *req.ContactNumber)
	}
	if req.Website != nil {
		set("website", *req.Website)
	}
	if req.EstablishedYear != nil {
		set("established_year", *req.EstablishedYear)
	}
	if req.Timezone != nil {
		set("timezone", *req.Timezone)
	}

	if len(setClauses) == 0 {
		return company.Company{}, company.ErrEmptyPatch
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := "UPDATE companies SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", len(args)) + companyColumns

	updated, err := scanCompany(q.QueryRow(ctx, query, args...))
	return companyResult(updated, err, "update")
}

// UpdateWorkingHours implements company.CompanyRepository.
func (c *companyRepositoryImpl) UpdateWorkingHours(ctx context.Context, id string, hours company.WorkingHours) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		UPDATE companies
		SET work_start = $2, work_end = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + companyColumns

	updated, err := scanCompany(q.QueryRow(ctx, query, id, hours.Start, hours.End))
	return companyResult(updated, err, "update working hours of")
}

// UpdateGeofence implements company.CompanyRepository.
func (c *companyRepositoryImpl) UpdateGeofence(ctx context.Context, id string, fence geofence.Fence) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		UPDATE companies
		SET geofence_latitude = $2, geofence_longitude = $3, geofence_radius_meters = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + companyColumns

	updated, err := scanCompany(q.QueryRow(ctx, query, id, fence.CenterLatitude, fence.CenterLongitude, fence.RadiusMeters))
	return companyResult(updated, err, "update geofence of")
}

// List implements company.CompanyRepository.
func (c *companyRepositoryImpl) List(ctx context.Context) ([]company.Company, error) {
	q := GetQuerier(ctx, c.db)

	rows, err := q.Query(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]company.Company, 0)
	for rows.Next() {
		found, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, found)
	}
	return companies, rows.Err()
}
