package holiday

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateHolidayRequest struct {
	Name string `json:"name"`
	Date string `json:"date"` // YYYY-MM-DD

	date time.Time
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.date = date
	return nil
}

// ParsedDate is only meaningful after Validate succeeded.
func (r *CreateHolidayRequest) ParsedDate() time.Time {
	return r.date
}

type HolidayResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
}
