package holiday

import "time"

type Holiday struct {
	ID        string
	CompanyID string
	Name      string
	Date      time.Time
	CreatedBy string
	CreatedAt time.Time
}
