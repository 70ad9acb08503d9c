package company

import "errors"

var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyNameExists    = errors.New("company name already exists")
	ErrInvalidCompanyName   = errors.New("company name cannot be empty")
	ErrEmptyPatch           = errors.New("no updatable fields provided")
	ErrNotCompanyOwnerAdmin = errors.New("only company administrators can manage the company")
)
