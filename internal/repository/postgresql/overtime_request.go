package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const overtimeColumns = `
	o.id, o.user_id, o.company_id, o.date, o.hours, o.reason,
	o.status, o.approved_by, o.approved_at, o.created_at, o.updated_at`

type overtimeRequestRepositoryImpl struct {
	db *database.DB
}

func scanOvertime(row rowScanner, extra ...any) (overtime.OvertimeRequest, error) {
	var o overtime.OvertimeRequest
	dest := []any{
		&o.ID, &o.UserID, &o.CompanyID, &o.Date, &o.Hours, &o.Reason,
		&o.Status, &o.ApprovedBy, &o.ApprovedAt, &o.CreatedAt, &o.UpdatedAt,
	}
	dest = append(dest, extra...)
	err := row.Scan(dest...)
	return o, err
}

// Create implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) Create(ctx context.Context, request overtime.OvertimeRequest) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO overtime_requests (id, user_id, company_id, date, hours, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID,
		request.UserID,
		request.CompanyID,
		request.Date,
		request.Hours,
		request.Reason,
		request.Status,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to create overtime request: %w", err)
	}

	return request, nil
}

// GetByID implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeColumns + `, u.name
		FROM overtime_requests o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.id = $1 AND o.company_id = $2
	`

	var userName *string
	o, err := scanOvertime(q.QueryRow(ctx, query, id, companyID), &userName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.OvertimeRequest{}, overtime.ErrOvertimeRequestNotFound
		}
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to get overtime request: %w", err)
	}
	o.UserName = userName

	return o, nil
}

// Decide implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) Decide(ctx context.Context, id string, d workflow.Decision) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests o
		SET status = $2,
			approved_by = $3,
			approved_at = $4,
			updated_at = NOW()
		WHERE o.id = $1
		  AND o.status = 'pending'
		RETURNING ` + overtimeColumns

	o, err := scanOvertime(q.QueryRow(ctx, query, id, d.Status, d.DecidedBy, d.DecidedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.OvertimeRequest{}, fmt.Errorf("overtime request %s: %w", id, workflow.ErrInvalidTransition)
		}
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to decide overtime request: %w", err)
	}

	return o, nil
}

// List implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) List(ctx context.Context, filter workflow.ListFilter) ([]overtime.OvertimeRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "o.company_id = $1"
	args := []interface{}{filter.CompanyID}
	argIdx := 2

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND o.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.Status != nil {
		baseWhere += fmt.Sprintf(" AND o.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil {
		baseWhere += fmt.Sprintf(" AND o.created_at >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		baseWhere += fmt.Sprintf(" AND o.created_at < $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM overtime_requests o WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtime requests: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, u.name
		FROM overtime_requests o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE %s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d
	`, overtimeColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query overtime requests: %w", err)
	}
	defer rows.Close()

	var requests []overtime.OvertimeRequest
	for rows.Next() {
		var userName *string
		o, err := scanOvertime(rows, &userName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		o.UserName = userName
		requests = append(requests, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate overtime requests: %w", err)
	}

	return requests, total, nil
}

// CountPendingByCompany implements overtime.OvertimeRequestRepository.
func (r *overtimeRequestRepositoryImpl) CountPendingByCompany(ctx context.Context) (map[string]int64, error) {
	return countPendingByCompany(ctx, GetQuerier(ctx, r.db), "overtime_requests")
}

func NewOvertimeRequestRepository(db *database.DB) overtime.OvertimeRequestRepository {
	return &overtimeRequestRepositoryImpl{db: db}
}
