package user

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string             `json:"id"`
	CompanyID     string             `json:"company_id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Phone         *string            `json:"phone,omitempty"`
	DateOfBirth   *string            `json:"date_of_birth,omitempty"`
	DepartmentID  *string            `json:"department_id,omitempty"`
	PositionID    *string            `json:"position_id,omitempty"`
	Role          string             `json:"role"`
	EmailVerified bool               `json:"email_verified"`
	LeaveBalance  map[string]float64 `json:"leave_balance,omitempty"`
	CreatedAt     string             `json:"created_at"`
	UpdatedAt     string             `json:"updated_at"`
}

type ListUserResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Users      []UserResponse `json:"users"`
}

// CreateUserRequest is an admin adding a member to their own company
type CreateUserRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Role         string  `json:"role"`
	Phone        *string `json:"phone,omitempty"`
	DateOfBirth  *string `json:"date_of_birth,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	PositionID   *string `json:"position_id,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if validator.IsEmpty(r.Role) {
		r.Role = string(RoleUser)
	} else if !Role(r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: user, admin",
		})
	}

	if r.DateOfBirth != nil {
		if _, ok := validator.IsValidDate(*r.DateOfBirth); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date_of_birth",
				Message: "date_of_birth must be in YYYY-MM-DD format",
			})
		}
	}

	if r.DepartmentID != nil && !validator.IsValidUUID(*r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id must be a valid UUID",
		})
	}
	if r.PositionID != nil && !validator.IsValidUUID(*r.PositionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "position_id",
			Message: "position_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return nil
}

// UpdateUserRequest is the allow-listed patch for a user. Fields not listed
// here (company, password hash, google link) cannot be changed through it.
type UpdateUserRequest struct {
	ID           string  `json:"-"`
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Role         *string `json:"role,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	DateOfBirth  *string `json:"date_of_birth,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	PositionID   *string `json:"position_id,omitempty"`
}

func (r *UpdateUserRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Role == nil && r.Phone == nil &&
		r.DateOfBirth == nil && r.DepartmentID == nil && r.PositionID == nil
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}

	if r.Email != nil {
		if validator.IsEmpty(*r.Email) {
			errs = append(errs, validator.ValidationError{
				Field:   "email",
				Message: "email must not be empty",
			})
		} else if !validator.IsValidEmail(*r.Email) {
			errs = append(errs, validator.ValidationError{
				Field:   "email",
				Message: "invalid email format",
			})
		}
	}

	if r.Role != nil && !Role(*r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: user, admin",
		})
	}

	if r.DateOfBirth != nil {
		if _, ok := validator.IsValidDate(*r.DateOfBirth); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date_of_birth",
				Message: "date_of_birth must be in YYYY-MM-DD format",
			})
		}
	}

	if r.DepartmentID != nil && !validator.IsValidUUID(*r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id must be a valid UUID",
		})
	}
	if r.PositionID != nil && !validator.IsValidUUID(*r.PositionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "position_id",
			Message: "position_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	if r.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &normalized
	}
	return nil
}

type UserFilter struct {
	CompanyID string
	Search    *string
	Role      *string
	Page      int
	Limit     int
}

func (f *UserFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Role != nil && !Role(*f.Role).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: user, admin",
		})
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
