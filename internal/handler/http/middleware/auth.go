package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type identityKey struct{}

// WithIdentity stores the resolved caller in ctx.
func WithIdentity(ctx context.Context, identity user.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity returns the caller stored by AuthRequired.
func GetIdentity(ctx context.Context) (user.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(user.Identity)
	return identity, ok
}

// AuthRequired accepts only verified access tokens and resolves the caller
// identity from their claims. It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != jwt.TypeAccess {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		identity, ok := identityFromClaims(claims)
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	}
	return http.HandlerFunc(hfn)
}

func identityFromClaims(claims map[string]interface{}) (user.Identity, bool) {
	userID, _ := claims["user_id"].(string)
	companyID, _ := claims["company_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || companyID == "" || !user.Role(role).IsValid() {
		return user.Identity{}, false
	}
	return user.Identity{UserID: userID, CompanyID: companyID, Role: user.Role(role)}, true
}
