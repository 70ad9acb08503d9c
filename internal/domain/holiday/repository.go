package holiday

import "context"

type HolidayRepository interface {
	// Create returns ErrHolidayDateExists when the company already has a holiday that day.
	Create(ctx context.Context, h Holiday) (Holiday, error)
	ListByYear(ctx context.Context, companyID string, year int) ([]Holiday, error)
	Delete(ctx context.Context, companyID, id string) error
}
