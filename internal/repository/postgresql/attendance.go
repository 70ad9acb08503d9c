package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const openAttendanceIndex = "attendances_one_open_per_user"

const attendanceColumns = `
	a.id, a.user_id, a.company_id,
	a.clock_in, a.clock_in_latitude, a.clock_in_longitude,
	a.clock_out, a.clock_out_latitude, a.clock_out_longitude,
	a.fence_latitude, a.fence_longitude, a.fence_radius_meters,
	a.status, a.total_work_hours, a.created_at, a.updated_at`

type attendanceRepository struct {
	db *database.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row rowScanner, extra ...any) (attendance.Attendance, error) {
	var att attendance.Attendance
	dest := []any{
		&att.ID, &att.UserID, &att.CompanyID,
		&att.ClockIn, &att.ClockInLatitude, &att.ClockInLongitude,
		&att.ClockOut, &att.ClockOutLatitude, &att.ClockOutLongitude,
		&att.Fence.CenterLatitude, &att.Fence.CenterLongitude, &att.Fence.RadiusMeters,
		&att.Status, &att.TotalWorkHours, &att.CreatedAt, &att.UpdatedAt,
	}
	if len(extra) > 0 {
		dest = append(dest, extra...)
	}
	err := row.Scan(dest...)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	if newAttendance.ID == "" {
		newAttendance.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO attendances (
			id, user_id, company_id,
			clock_in, clock_in_latitude, clock_in_longitude,
			fence_latitude, fence_longitude, fence_radius_meters,
			status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		newAttendance.CompanyID,
		newAttendance.ClockIn,
		newAttendance.ClockInLatitude,
		newAttendance.ClockInLongitude,
		newAttendance.Fence.CenterLatitude,
		newAttendance.Fence.CenterLongitude,
		newAttendance.Fence.RadiusMeters,
		newAttendance.Status,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		if isUniqueViolationOn(err, openAttendanceIndex) {
			return attendance.Attendance{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetOpenByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenByUser(ctx context.Context, userID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1
		  AND a.clock_out IS NULL
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrNoOpenClockIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get open session: %w", err)
	}

	return att, nil
}

// Close implements attendance.AttendanceRepository.
func (a *attendanceRepository) Close(ctx context.Context, id string, closing attendance.Closing) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances a
		SET clock_out = $2,
			clock_out_latitude = $3,
			clock_out_longitude = $4,
			total_work_hours = $5,
			updated_at = NOW()
		WHERE a.id = $1
		  AND a.clock_out IS NULL
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query,
		id,
		closing.ClockOut,
		closing.Latitude,
		closing.Longitude,
		closing.TotalWorkHours,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrNoOpenClockIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to close attendance: %w", err)
	}

	return att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, companyID, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `, u.name
		FROM attendances a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.id = $1 AND a.company_id = $2
	`

	var userName *string
	att, err := scanAttendance(q.QueryRow(ctx, query, id, companyID), &userName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	att.UserName = userName

	return att, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "a.company_id = $1"
	args := []interface{}{filter.CompanyID}
	argIdx := 2

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	// Date range filters over the clock-in day
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.clock_in >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.clock_in < ($%d::date + INTERVAL '1 day')", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM attendances a WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, u.name
		FROM attendances a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY a.clock_in DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		var userName *string
		att, err := scanAttendance(rows, &userName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		att.UserName = userName
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return attendances, total, nil
}

// ListOpenStartedBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenStartedBefore(ctx context.Context, t time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.clock_out IS NULL
		  AND a.clock_in < $1
		ORDER BY a.clock_in
	`

	rows, err := q.Query(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate open attendances: %w", err)
	}

	return attendances, nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
