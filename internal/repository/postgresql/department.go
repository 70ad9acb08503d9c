package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

// Create implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Create(ctx context.Context, p department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO departments (id, company_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, company_id, name, description, created_at, updated_at
	`

	var result department.Department
	err := q.QueryRow(ctx, query, uuid.Must(uuid.NewV7()).String(), p.CompanyID, p.Name, p.Description).Scan(
		&result.ID,
		&result.CompanyID,
		&result.Name,
		&result.Description,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return department.Department{}, department.ErrDepartmentNameExists
		}
		return department.Department{}, fmt.Errorf("failed to create department: %w", err)
	}

	return result, nil
}

// GetByID implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, description, created_at, updated_at
		FROM departments
		WHERE id = $1 AND company_id = $2
	`

	var result department.Department
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&result.ID,
		&result.CompanyID,
		&result.Name,
		&result.Description,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department: %w", err)
	}

	return result, nil
}

// GetByCompanyID implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) GetByCompanyID(ctx context.Context, companyID string) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, description, created_at, updated_at
		FROM departments
		WHERE company_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get departments: %w", err)
	}
	defer rows.Close()

	var departments []department.Department
	for rows.Next() {
		var p department.Department
		err := rows.Scan(
			&p.ID,
			&p.CompanyID,
			&p.Name,
			&p.Description,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return departments, nil
}

// Update implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Update(ctx context.Context, companyID string, req department.UpdateDepartmentRequest) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE departments
		SET name = COALESCE($3, name),
			description = COALESCE($4, description),
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING id, company_id, name, description, created_at, updated_at
	`

	var result department.Department
	err := q.QueryRow(ctx, query, req.ID, companyID, req.Name, req.Description).Scan(
		&result.ID,
		&result.CompanyID,
		&result.Name,
		&result.Description,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		if isUniqueViolation(err) {
			return department.Department{}, department.ErrDepartmentNameExists
		}
		return department.Department{}, fmt.Errorf("failed to update department: %w", err)
	}

	return result, nil
}

// Delete implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Delete(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM departments WHERE id = $1 AND company_id = $2`

	commandTag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}

	return nil
}
