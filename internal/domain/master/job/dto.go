package job

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"

type CreateJobRequest struct {
	DepartmentID string  `json:"department_id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
}

func (r *CreateJobRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id must be a valid UUID",
		})
	}

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	} else if len(r.Title) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 100 characters",
		})
	}

	if r.Description != nil && len(*r.Description) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateJobRequest struct {
	ID           string  `json:"-"` // From URL
	DepartmentID *string `json:"department_id,omitempty"`
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
}

func (r *UpdateJobRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.DepartmentID == nil && r.Title == nil && r.Description == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one of department_id, title or description is required",
		})
	}

	if r.DepartmentID != nil && !validator.IsValidUUID(*r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id must be a valid UUID",
		})
	}

	if r.Title != nil {
		if validator.IsEmpty(*r.Title) {
			errs = append(errs, validator.ValidationError{
				Field:   "title",
				Message: "title cannot be empty",
			})
		} else if len(*r.Title) > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   "title",
				Message: "title must not exceed 100 characters",
			})
		}
	}

	if r.Description != nil && len(*r.Description) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// JobFilter narrows a job listing to one department.
type JobFilter struct {
	DepartmentID *string
}

func (f *JobFilter) Validate() error {
	if f.DepartmentID != nil && !validator.IsValidUUID(*f.DepartmentID) {
		return validator.ValidationErrors{{
			Field:   "department_id",
			Message: "department_id must be a valid UUID",
		}}
	}
	return nil
}

type JobResponse struct {
	ID           string  `json:"id"`
	CompanyID    string  `json:"company_id"`
	DepartmentID string  `json:"department_id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
}
