package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

// optionalQuery returns nil for a missing or empty query parameter.
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// pagination reads page and limit, ignoring anything that is not a positive number.
func pagination(r *http.Request, defaultLimit int) (page, limit int) {
	page, limit = 1, defaultLimit
	if p := r.URL.Query().Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	return page, limit
}

// identityOrAbort writes 401 when the route was mounted without AuthRequired.
func identityOrAbort(w http.ResponseWriter, r *http.Request) (user.Identity, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
	}
	return identity, ok
}
