package user

import "context"

type UserService interface {
	Me(ctx context.Context, identity Identity) (UserResponse, error)
	GetByID(ctx context.Context, identity Identity, id string) (UserResponse, error)
	List(ctx context.Context, identity Identity, filter UserFilter) (ListUserResponse, error)
	Create(ctx context.Context, identity Identity, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, identity Identity, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, identity Identity, id string) error
}
