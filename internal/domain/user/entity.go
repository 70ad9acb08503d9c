package user

import "time"

type Role string

const (
	RoleUser  Role = "user"  // Regular employee
	RoleAdmin Role = "admin" // Company administrator, approves requests
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID            string
	CompanyID     string
	Name          string
	Email         string
	PasswordHash  *string
	Phone         *string
	DateOfBirth   *time.Time
	DepartmentID  *string
	PositionID    *string
	Role          Role
	GoogleID      *string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAdmin checks if user is a company administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity is the resolved caller of a core operation.
type Identity struct {
	UserID    string
	CompanyID string
	Role      Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
