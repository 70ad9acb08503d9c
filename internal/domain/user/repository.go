package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByGoogleID(ctx context.Context, googleID string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, companyID string, req UpdateUserRequest) (User, error)
	Delete(ctx context.Context, companyID, id string) error
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ListIDsByCompany(ctx context.Context, companyID string, role *Role) ([]string, error)
	LinkGoogleAccount(ctx context.Context, googleID string, email string) (User, error)
}
