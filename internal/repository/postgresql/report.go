package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// GetAttendanceRows implements report.ReportRepository.
func (r *reportRepositoryImpl) GetAttendanceRows(ctx context.Context, companyID string, from, to time.Time, userID *string) ([]report.UserAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			u.id, u.name, u.email,
			a.clock_in, a.clock_out, a.status, a.total_work_hours
		FROM users u
		LEFT JOIN attendances a ON a.user_id = u.id
			AND a.clock_in >= $2 AND a.clock_in < $3
		WHERE u.company_id = $1`
	args := []interface{}{companyID, from, to}
	if userID != nil {
		args = append(args, *userID)
		query += fmt.Sprintf(" AND u.id = $%d", len(args))
	}
	query += " ORDER BY u.name ASC, u.id, a.clock_in ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance report: %w", err)
	}
	defer rows.Close()

	var (
		result []report.UserAttendance
		index  = make(map[string]int)
	)
	for rows.Next() {
		var (
			id, name, email string
			clockIn         *time.Time
			clockOut        *time.Time
			status          *string
			totalWorkHours  *float64
		)
		if err := rows.Scan(&id, &name, &email, &clockIn, &clockOut, &status, &totalWorkHours); err != nil {
			return nil, fmt.Errorf("failed to scan attendance report row: %w", err)
		}

		i, ok := index[id]
		if !ok {
			result = append(result, report.UserAttendance{UserID: id, Name: name, Email: email})
			i = len(result) - 1
			index[id] = i
		}
		if clockIn == nil {
			continue
		}
		entry := report.AttendanceEntry{
			ClockIn:        *clockIn,
			ClockOut:       clockOut,
			TotalWorkHours: totalWorkHours,
		}
		if status != nil {
			entry.Status = *status
		}
		result[i].Entries = append(result[i].Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

// GetLeaveBalanceRows implements report.ReportRepository.
func (r *reportRepositoryImpl) GetLeaveBalanceRows(ctx context.Context, companyID string) ([]report.LeaveBalanceRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			u.id, u.name, u.email,
			COALESCE(MAX(b.balance) FILTER (WHERE b.leave_type = 'sick'), 0),
			COALESCE(MAX(b.balance) FILTER (WHERE b.leave_type = 'annual'), 0),
			COALESCE(MAX(b.balance) FILTER (WHERE b.leave_type = 'unpaid'), 0),
			(SELECT COUNT(*) FROM leave_requests lr
				WHERE lr.user_id = u.id AND lr.status = 'pending')
		FROM users u
		LEFT JOIN leave_balances b ON b.user_id = u.id
		WHERE u.company_id = $1
		GROUP BY u.id, u.name, u.email
		ORDER BY u.name ASC`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave balance report: %w", err)
	}
	defer rows.Close()

	var result []report.LeaveBalanceRow
	for rows.Next() {
		var row report.LeaveBalanceRow
		if err := rows.Scan(
			&row.UserID, &row.Name, &row.Email,
			&row.Sick, &row.Annual, &row.Unpaid,
			&row.PendingRequests,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave balance row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}
