package user

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	user.UserRepository
	companyRepo company.CompanyRepository
	balanceRepo leave.BalanceRepository
	tx          database.Transactor
	defaults    leave.Defaults
	hashCost    int
	timeout     time.Duration
}

func NewUserService(
	userRepo user.UserRepository,
	companyRepo company.CompanyRepository,
	balanceRepo leave.BalanceRepository,
	tx database.Transactor,
	defaults leave.Defaults,
	timeout time.Duration,
) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepo,
		companyRepo:    companyRepo,
		balanceRepo:    balanceRepo,
		tx:             tx,
		defaults:       defaults,
		hashCost:       bcrypt.DefaultCost,
		timeout:        timeout,
	}
}

// Me implements user.UserService.
func (s *UserServiceImpl) Me(ctx context.Context, identity user.Identity) (user.UserResponse, error) {
	return s.GetByID(ctx, identity, identity.UserID)
}

// GetByID returns a member of the caller's company. Non-admins may only read themselves.
func (s *UserServiceImpl) GetByID(ctx context.Context, identity user.Identity, id string) (user.UserResponse, error) {
	if id != identity.UserID && !identity.IsAdmin() {
		return user.UserResponse{}, user.ErrInsufficientPermissions
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	found, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	if found.CompanyID != identity.CompanyID {
		return user.UserResponse{}, user.ErrUserNotFound
	}

	resp := MapUser(found)
	balance, err := s.balanceRepo.Get(ctx, found.ID)
	switch {
	case err == nil:
		resp.LeaveBalance = balance.ToMap()
	case !errors.Is(err, leave.ErrBalanceNotFound):
		return user.UserResponse{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return resp, nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, identity user.Identity, filter user.UserFilter) (user.ListUserResponse, error) {
	if !identity.IsAdmin() {
		return user.ListUserResponse{}, user.ErrAdminPrivilegeRequired
	}
	filter.CompanyID = identity.CompanyID
	if err := filter.Validate(); err != nil {
		return user.ListUserResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, err
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, MapUser(u))
	}

	return user.ListUserResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Users:      responses,
	}, nil
}

// Create adds a member to the admin's company and opens their leave balances
// in the same transaction.
func (s *UserServiceImpl) Create(ctx context.Context, identity user.Identity, req user.CreateUserRequest) (user.UserResponse, error) {
	if !identity.IsAdmin() {
		return user.UserResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	newUser := user.User{
		CompanyID:    identity.CompanyID,
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: &hashed,
		Phone:        req.Phone,
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
		Role:         user.Role(req.Role),
	}
	if req.DateOfBirth != nil {
		dob, _ := time.Parse("2006-01-02", *req.DateOfBirth)
		newUser.DateOfBirth = &dob
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	var created user.User
	balance := s.defaults.Balance()
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.UserRepository.Create(txCtx, newUser)
		if err != nil {
			return err
		}
		if err := s.balanceRepo.Init(txCtx, created.ID, balance); err != nil {
			return fmt.Errorf("failed to init leave balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	resp := MapUser(created)
	resp.LeaveBalance = balance.ToMap()
	return resp, nil
}

// Update applies the allow-listed patch. The company owner cannot be demoted.
func (s *UserServiceImpl) Update(ctx context.Context, identity user.Identity, req user.UpdateUserRequest) (user.UserResponse, error) {
	if !identity.IsAdmin() {
		return user.UserResponse{}, user.ErrAdminPrivilegeRequired
	}
	if req.IsEmpty() {
		return user.UserResponse{}, company.ErrEmptyPatch
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	if req.Role != nil && user.Role(*req.Role) != user.RoleAdmin {
		owner, err := s.companyRepo.GetByID(ctx, identity.CompanyID)
		if err != nil {
			return user.UserResponse{}, err
		}
		if owner.OwnerID != nil && *owner.OwnerID == req.ID {
			return user.UserResponse{}, user.ErrCannotDemoteOwner
		}
	}

	updated, err := s.UserRepository.Update(ctx, identity.CompanyID, req)
	if err != nil {
		return user.UserResponse{}, err
	}
	return MapUser(updated), nil
}

// Delete implements user.UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, identity user.Identity, id string) error {
	if !identity.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}
	if id == identity.UserID {
		return user.ErrCannotDeleteSelf
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	owner, err := s.companyRepo.GetByID(ctx, identity.CompanyID)
	if err != nil {
		return err
	}
	if owner.OwnerID != nil && *owner.OwnerID == id {
		return user.ErrCannotDemoteOwner
	}

	return s.UserRepository.Delete(ctx, identity.CompanyID, id)
}

func MapUser(u user.User) user.UserResponse {
	resp := user.UserResponse{
		ID:            u.ID,
		CompanyID:     u.CompanyID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		DepartmentID:  u.DepartmentID,
		PositionID:    u.PositionID,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
	if u.DateOfBirth != nil {
		dob := u.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &dob
	}
	return resp
}
