package position

import "time"

type Position struct {
	ID          string
	CompanyID   string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
