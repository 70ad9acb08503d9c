package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

const holidayDateIndex = "holidays_company_id_date_key"

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// Create implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	if h.ID == "" {
		h.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO holidays (id, company_id, name, date, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query, h.ID, h.CompanyID, h.Name, h.Date, h.CreatedBy).Scan(&h.CreatedAt)
	if err != nil {
		if isUniqueViolationOn(err, holidayDateIndex) {
			return holiday.Holiday{}, holiday.ErrHolidayDateExists
		}
		return holiday.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}

	return h, nil
}

// ListByYear implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) ListByYear(ctx context.Context, companyID string, year int) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, date, created_by, created_at
		FROM holidays
		WHERE company_id = $1
		  AND EXTRACT(YEAR FROM date) = $2
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.Name, &h.Date, &h.CreatedBy, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holidays: %w", err)
	}

	return holidays, nil
}

// Delete implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}

	return nil
}
