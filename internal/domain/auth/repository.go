package auth

import (
	"context"
	"time"
)

// RefreshTokenRepository stores hashes of issued refresh tokens so they can be rotated and revoked.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID string, token string, expiresAt time.Time, session SessionTrackingRequest) error

	// Lookup returns the owner of token and whether it is no longer usable
	// (revoked or expired). It returns ErrInvalidToken when the token was never stored.
	Lookup(ctx context.Context, token string) (userID string, revoked bool, err error)

	// Revoke marks token revoked. It reports false when it was already revoked.
	Revoke(ctx context.Context, token string) (bool, error)
}
