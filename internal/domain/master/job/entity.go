package job

import "time"

// Job is a role offered inside a department.
type Job struct {
	ID           string
	CompanyID    string
	DepartmentID string
	Title        string
	Description  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
