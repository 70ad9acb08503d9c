package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Defaults seed what registration creates.
type Defaults struct {
	Company company.Defaults
	Leave   leave.Defaults
}

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	company.CompanyRepository
	balanceRepo leave.BalanceRepository
	tokens      auth.RefreshTokenRepository
	jwt.Service
	defaults Defaults
	hashCost int
	timeout  time.Duration
}

func NewAuthService(
	tx database.Transactor,
	userRepository user.UserRepository,
	companyRepository company.CompanyRepository,
	balanceRepository leave.BalanceRepository,
	refreshTokens auth.RefreshTokenRepository,
	jwtService jwt.Service,
	defaults Defaults,
	timeout time.Duration,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:                tx,
		UserRepository:    userRepository,
		CompanyRepository: companyRepository,
		balanceRepo:       balanceRepository,
		tokens:            refreshTokens,
		Service:           jwtService,
		defaults:          defaults,
		hashCost:          bcrypt.DefaultCost,
		timeout:           timeout,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates the company, its owner admin and the owner's leave
// balances in one transaction, then signs the owner in.
func (a *AuthServiceImpl) Register(ctx context.Context, registerReq auth.RegisterRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := registerReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	hashedPassword, err := a.hashPassword(registerReq.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	settings := a.defaults.Company
	if registerReq.Timezone != nil {
		settings.Timezone = *registerReq.Timezone
	}

	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		newCompany, err := a.CompanyRepository.Create(txCtx, company.Company{
			Name:          registerReq.CompanyName,
			ContactNumber: registerReq.ContactNumber,
			Geofence:      settings.Geofence,
			WorkingHours:  settings.WorkingHours,
			Timezone:      settings.Timezone,
		})
		if err != nil {
			return err
		}

		owner, err := a.UserRepository.Create(txCtx, user.User{
			CompanyID:    newCompany.ID,
			Name:         registerReq.Name,
			Email:        registerReq.Email,
			PasswordHash: &hashedPassword,
			Role:         user.RoleAdmin,
		})
		if err != nil {
			return err
		}

		if err := a.balanceRepo.Init(txCtx, owner.ID, a.defaults.Leave.Balance()); err != nil {
			return fmt.Errorf("failed to init leave balance: %w", err)
		}
		if err := a.CompanyRepository.SetOwner(txCtx, newCompany.ID, owner.ID); err != nil {
			return err
		}

		tokenResponse, err = a.issueTokens(txCtx, owner, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return tokenResponse, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	userData, err := a.UserRepository.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Google-only accounts have no password to compare
	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, userData, session)
}

// LoginWithGoogle signs in an existing account by its Google identity,
// linking the Google id on first use. Unknown emails are refused.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, googleEmail string, googleID string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	userData, err := a.UserRepository.GetByGoogleID(ctx, googleID)
	if err == nil {
		return a.issueTokens(ctx, userData, session)
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by google id: %w", err)
	}

	userData, err = a.UserRepository.LinkGoogleAccount(ctx, googleID, googleEmail)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrGoogleAccountUnknown
		}
		return auth.TokenResponse{}, err
	}

	return a.issueTokens(ctx, userData, session)
}

// RefreshToken rotates the refresh token: the presented one is revoked and a new pair is issued.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	// 1. Verify JWT signature, expiry and type
	if _, err := a.Service.ValidateRefreshToken(req.RefreshToken); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	var tokenResponse auth.TokenResponse
	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// 2. Check the store for revocation/expiry
		userID, revoked, err := a.tokens.Lookup(txCtx, req.RefreshToken)
		if err != nil {
			return err
		}
		if revoked {
			return auth.ErrRefreshTokenRevoked
		}

		// 3. Revoke; losing a concurrent rotation counts as revoked
		ok, err := a.tokens.Revoke(txCtx, req.RefreshToken)
		if err != nil {
			return err
		}
		if !ok {
			return auth.ErrRefreshTokenRevoked
		}

		// 4. Issue a new pair for the current state of the user
		userData, err := a.UserRepository.GetByID(txCtx, userID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return auth.ErrInvalidToken
			}
			return err
		}

		tokenResponse, err = a.issueTokens(txCtx, userData, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return tokenResponse, nil
}

// Logout revokes the refresh token. Logging out twice is not an error.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	if _, err := a.tokens.Revoke(ctx, token); err != nil {
		return err
	}
	return nil
}

// IssueSSEToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueSSEToken(_ context.Context, identity user.Identity) (auth.SSETokenResponse, error) {
	token, expiresIn, err := a.Service.GenerateSSEToken(identity.UserID)
	if err != nil {
		return auth.SSETokenResponse{}, fmt.Errorf("failed to generate sse token: %w", err)
	}
	return auth.SSETokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, userData user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var (
		tokenResponse auth.TokenResponse
		err           error
	)

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(userData)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(userData.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	expiresAt := time.Unix(tokenResponse.RefreshTokenExpiresIn, 0)
	if err := a.tokens.Create(ctx, userData.ID, tokenResponse.RefreshToken, expiresAt, session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	return tokenResponse, nil
}
