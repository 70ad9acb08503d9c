package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

// Get implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, userID string) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT leave_type, balance
		FROM leave_balances
		WHERE user_id = $1
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave balance: %w", err)
	}
	defer rows.Close()

	balance := make(leave.Balance)
	for rows.Next() {
		var leaveType leave.LeaveType
		var points float64
		if err := rows.Scan(&leaveType, &points); err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balance[leaveType] = points
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave balance: %w", err)
	}
	if len(balance) == 0 {
		return nil, leave.ErrBalanceNotFound
	}

	return balance, nil
}

// Init implements leave.BalanceRepository. Existing rows are left untouched.
func (r *leaveBalanceRepositoryImpl) Init(ctx context.Context, userID string, balance leave.Balance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (user_id, leave_type, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, leave_type) DO NOTHING
	`

	for _, leaveType := range leave.AllLeaveTypes() {
		if _, err := q.Exec(ctx, query, userID, leaveType, balance[leaveType]); err != nil {
			return fmt.Errorf("failed to init %s balance: %w", leaveType, err)
		}
	}

	return nil
}

// Debit implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Debit(ctx context.Context, userID string, leaveType leave.LeaveType, points float64) (float64, error) {
	if points < 0 {
		return 0, fmt.Errorf("cannot debit negative points %v", points)
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET balance = balance - $3, updated_at = NOW()
		WHERE user_id = $1
		  AND leave_type = $2
		  AND balance >= $3
		RETURNING balance
	`

	var after float64
	err := q.QueryRow(ctx, query, userID, leaveType, points).Scan(&after)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s balance below %v: %w", leaveType, points, leave.ErrInsufficientBalance)
		}
		return 0, fmt.Errorf("failed to debit leave balance: %w", err)
	}

	return after, nil
}

// AppendLedger implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) AppendLedger(ctx context.Context, entry leave.LedgerEntry) error {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO leave_ledger (
			id, user_id, leave_type, leave_request_id,
			delta, balance_after, note, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.LeaveType,
		entry.LeaveRequestID,
		entry.Delta,
		entry.BalanceAfter,
		entry.Note,
		entry.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to append leave ledger: %w", err)
	}

	return nil
}

// ListLedger implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListLedger(ctx context.Context, userID string, limit int) ([]leave.LedgerEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, leave_type, leave_request_id,
			   delta, balance_after, note, created_by, created_at
		FROM leave_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave ledger: %w", err)
	}
	defer rows.Close()

	var entries []leave.LedgerEntry
	for rows.Next() {
		var e leave.LedgerEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.LeaveType,
			&e.LeaveRequestID,
			&e.Delta,
			&e.BalanceAfter,
			&e.Note,
			&e.CreatedBy,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave ledger: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave ledger: %w", err)
	}

	return entries, nil
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}
