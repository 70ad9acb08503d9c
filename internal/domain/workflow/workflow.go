// Package workflow holds the pending → approved | rejected state machine
// shared by leave and overtime requests.
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition only allows leaving pending, towards a terminal status.
func (s Status) CanTransition(to Status) bool {
	return s == StatusPending && to.IsTerminal()
}

var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("request is no longer pending")
	ErrNotFound          = errors.New("not found")
)

// Subject is a request driven through the workflow.
type Subject interface {
	GetID() string
	GetUserID() string
	GetCompanyID() string
	GetStatus() Status
}

// Decision is the terminal transition written by Store.Decide.
type Decision struct {
	Status    Status
	DecidedBy string
	DecidedAt time.Time
}

// ListFilter narrows list queries. StartDate (inclusive) and EndDate (exclusive)
// apply to created_at.
type ListFilter struct {
	CompanyID string
	UserID    *string
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
}

// ParseListFilter builds a filter from "YYYY-MM-DD" query values. The end day
// is included in the result.
func ParseListFilter(userID, status, startDate, endDate *string, page, limit int) (ListFilter, error) {
	var errs validator.ValidationErrors
	out := ListFilter{Page: page, Limit: limit}

	if userID != nil && *userID != "" {
		if !validator.IsValidUUID(*userID) {
			errs = append(errs, validator.ValidationError{
				Field:   "user_id",
				Message: "user_id must be a valid UUID",
			})
		}
		out.UserID = userID
	}

	if status != nil && *status != "" {
		s := Status(*status)
		if !s.IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: pending, approved, rejected",
			})
		}
		out.Status = &s
	}

	if startDate != nil && *startDate != "" {
		t, ok := validator.IsValidDate(*startDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
		out.StartDate = &t
	}

	if endDate != nil && *endDate != "" {
		t, ok := validator.IsValidDate(*endDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
		exclusive := t.AddDate(0, 0, 1)
		out.EndDate = &exclusive
	}

	if page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}

	if len(errs) > 0 {
		return ListFilter{}, errs
	}
	out.Normalize()
	return out, nil
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Store is the persistence contract of one request kind.
type Store[T Subject] interface {
	// GetByID returns an error wrapping ErrNotFound when id does not exist in the company.
	GetByID(ctx context.Context, companyID, id string) (T, error)
	Create(ctx context.Context, item T) (T, error)
	// Decide applies d only while the request is still pending, and returns an
	// error wrapping ErrInvalidTransition otherwise.
	Decide(ctx context.Context, id string, d Decision) (T, error)
	// List returns the page newest first, and the total match count.
	List(ctx context.Context, filter ListFilter) ([]T, int64, error)
}

type Page[T Subject] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

func newPage[T Subject](items []T, total int64, f ListFilter) Page[T] {
	totalPages := int(total) / f.Limit
	if int(total)%f.Limit != 0 {
		totalPages++
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages,
	}
}
