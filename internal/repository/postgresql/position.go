package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/position"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type positionRepositoryImpl struct {
	db *database.DB
}

func NewPositionRepository(db *database.DB) position.PositionRepository {
	return &positionRepositoryImpl{db: db}
}

// Create implements position.PositionRepository.
func (r *positionRepositoryImpl) Create(ctx context.Context, p position.Position) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO positions (id, company_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, company_id, name, description, created_at, updated_at
	`

	var result position.Position
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
			return position.Position{}, position.ErrPositionNameExists
		}
		return position.Position{}, fmt.Errorf("failed to create position: %w", err)
	}

	return result, nil
}

// GetByID implements position.PositionRepository.
func (r *positionRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, description, created_at, updated_at
		FROM positions
		WHERE id = $1 AND company_id = $2
	`

	var result position.Position
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
			return position.Position{}, position.ErrPositionNotFound
		}
		return position.Position{}, fmt.Errorf("failed to get position: %w", err)
	}

	return result, nil
}

// GetByCompanyID implements position.PositionRepository.
func (r *positionRepositoryImpl) GetByCompanyID(ctx context.Context, companyID string) ([]position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, description, created_at, updated_at
		FROM positions
		WHERE company_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	defer rows.Close()

	var positions []position.Position
	for rows.Next() {
		var p position.Position
		err := rows.Scan(
			&p.ID,
			&p.CompanyID,
			&p.Name,
			&p.Description,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return positions, nil
}

// Update implements position.PositionRepository.
func (r *positionRepositoryImpl) Update(ctx context.Context, companyID string, req position.UpdatePositionRequest) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE positions
		SET name = COALESCE($3, name),
			description = COALESCE($4, description),
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING id, company_id, name, description, created_at, updated_at
	`

	var result position.Position
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
			return position.Position{}, position.ErrPositionNotFound
		}
		if isUniqueViolation(err) {
			return position.Position{}, position.ErrPositionNameExists
		}
		return position.Position{}, fmt.Errorf("failed to update position: %w", err)
	}

	return result, nil
}

// Delete implements position.PositionRepository.
func (r *positionRepositoryImpl) Delete(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM positions WHERE id = $1 AND company_id = $2`

	commandTag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return position.ErrPositionNotFound
	}

	return nil
}
