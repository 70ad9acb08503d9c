package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest, session SessionTrackingRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)
	LoginWithGoogle(ctx context.Context, email string, googleID string, session SessionTrackingRequest) (TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest, session SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	IssueSSEToken(ctx context.Context, identity user.Identity) (SSETokenResponse, error)
}
