package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/job"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, company_id, department_id, title, description, created_at, updated_at`

type jobRepositoryImpl struct {
	db *database.DB
}

func NewJobRepository(db *database.DB) job.JobRepository {
	return &jobRepositoryImpl{db: db}
}

func scanJob(row pgx.Row) (job.Job, error) {
	var j job.Job
	err := row.Scan(
		&j.ID,
		&j.CompanyID,
		&j.DepartmentID,
		&j.Title,
		&j.Description,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	return j, err
}

// Create implements job.JobRepository.
func (r *jobRepositoryImpl) Create(ctx context.Context, j job.Job) (job.Job, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO jobs (id, company_id, department_id, title, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + jobColumns

	result, err := scanJob(q.QueryRow(ctx, query, uuid.Must(uuid.NewV7()).String(), j.CompanyID, j.DepartmentID, j.Title, j.Description))
	if err != nil {
		if isUniqueViolation(err) {
			return job.Job{}, job.ErrJobTitleExists
		}
		return job.Job{}, fmt.Errorf("failed to create job: %w", err)
	}

	return result, nil
}

// GetByID implements job.JobRepository.
func (r *jobRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (job.Job, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 AND company_id = $2`

	result, err := scanJob(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrJobNotFound
		}
		return job.Job{}, fmt.Errorf("failed to get job: %w", err)
	}

	return result, nil
}

// List implements job.JobRepository.
func (r *jobRepositoryImpl) List(ctx context.Context, companyID string, departmentID *string) ([]job.Job, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE company_id = $1 AND ($2::uuid IS NULL OR department_id = $2)
		ORDER BY title ASC
	`

	rows, err := q.Query(ctx, query, companyID, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs: %w", err)
	}
	defer rows.Close()

	var jobs []job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return jobs, nil
}

// Update implements job.JobRepository.
func (r *jobRepositoryImpl) Update(ctx context.Context, companyID string, req job.UpdateJobRequest) (job.Job, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE jobs
		SET department_id = COALESCE($3, department_id),
			title = COALESCE($4, title),
			description = COALESCE($5, description),
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + jobColumns

	result, err := scanJob(q.QueryRow(ctx, query, req.ID, companyID, req.DepartmentID, req.Title, req.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrJobNotFound
		}
		if isUniqueViolation(err) {
			return job.Job{}, job.ErrJobTitleExists
		}
		return job.Job{}, fmt.Errorf("failed to update job: %w", err)
	}

	return result, nil
}

// Delete implements job.JobRepository.
func (r *jobRepositoryImpl) Delete(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}

	return nil
}
