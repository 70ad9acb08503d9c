package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	lr.id, lr.user_id, lr.company_id, lr.leave_type, lr.duration,
	lr.start_date, lr.end_date, lr.points, lr.points_debited,
	lr.reason, lr.status, lr.approved_by, lr.approved_at,
	lr.created_at, lr.updated_at`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func scanLeaveRequest(row rowScanner, extra ...any) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	dest := []any{
		&lr.ID, &lr.UserID, &lr.CompanyID, &lr.LeaveType, &lr.Duration,
		&lr.StartDate, &lr.EndDate, &lr.Points, &lr.PointsDebited,
		&lr.Reason, &lr.Status, &lr.ApprovedBy, &lr.ApprovedAt,
		&lr.CreatedAt, &lr.UpdatedAt,
	}
	dest = append(dest, extra...)
	err := row.Scan(dest...)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO leave_requests (
			id, user_id, company_id, leave_type, duration,
			start_date, end_date, points, reason, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID,
		request.UserID,
		request.CompanyID,
		request.LeaveType,
		request.Duration,
		request.StartDate,
		request.EndDate,
		request.Points,
		request.Reason,
		request.Status,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + `, u.name
		FROM leave_requests lr
		LEFT JOIN users u ON u.id = lr.user_id
		WHERE lr.id = $1 AND lr.company_id = $2
	`

	var userName *string
	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id, companyID), &userName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	lr.UserName = userName

	return lr, nil
}

// Decide implements leave.LeaveRequestRepository. The status guard in the
// WHERE clause makes concurrent decisions race on the row lock; the loser
// matches nothing.
func (r *leaveRequestRepositoryImpl) Decide(ctx context.Context, id string, d workflow.Decision) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests lr
		SET status = $2,
			approved_by = $3,
			approved_at = $4,
			updated_at = NOW()
		WHERE lr.id = $1
		  AND lr.status = 'pending'
		RETURNING ` + leaveRequestColumns

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id, d.Status, d.DecidedBy, d.DecidedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, fmt.Errorf("leave request %s: %w", id, workflow.ErrInvalidTransition)
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to decide leave request: %w", err)
	}

	return lr, nil
}

// SetPointsDebited implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) SetPointsDebited(ctx context.Context, id string, points float64) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests lr
		SET points_debited = $2, updated_at = NOW()
		WHERE lr.id = $1
		RETURNING ` + leaveRequestColumns

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id, points))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to record debited points: %w", err)
	}

	return lr, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter workflow.ListFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	baseWhere := "lr.company_id = $1"
	args := []interface{}{filter.CompanyID}
	argIdx := 2

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND lr.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.Status != nil {
		baseWhere += fmt.Sprintf(" AND lr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil {
		baseWhere += fmt.Sprintf(" AND lr.created_at >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		baseWhere += fmt.Sprintf(" AND lr.created_at < $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM leave_requests lr WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, u.name
		FROM leave_requests lr
		LEFT JOIN users u ON u.id = lr.user_id
		WHERE %s
		ORDER BY lr.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var userName *string
		lr, err := scanLeaveRequest(rows, &userName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		lr.UserName = userName
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, total, nil
}

// CountPendingByCompany implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CountPendingByCompany(ctx context.Context) (map[string]int64, error) {
	return countPendingByCompany(ctx, GetQuerier(ctx, r.db), "leave_requests")
}

// countPendingByCompany is shared by the request tables that carry a status column.
func countPendingByCompany(ctx context.Context, q database.Querier, table string) (map[string]int64, error) {
	query := fmt.Sprintf(`
		SELECT company_id, COUNT(*)
		FROM %s
		WHERE status = 'pending'
		GROUP BY company_id
	`, table)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending %s: %w", table, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var companyID string
		var count int64
		if err := rows.Scan(&companyID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan pending count: %w", err)
		}
		counts[companyID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending counts: %w", err)
	}

	return counts, nil
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}
