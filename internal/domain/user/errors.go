package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrInvalidRole             = errors.New("invalid role")
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCannotDeleteSelf        = errors.New("cannot delete your own account")
	ErrCannotDemoteOwner       = errors.New("company owner must remain admin")
)
