package notification

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type companyMembers interface {
	ListIDsByCompany(ctx context.Context, companyID string, role *user.Role) ([]string, error)
}

type recipientResolver struct {
	users companyMembers
}

// NewRecipientResolver expands admin and company audiences from the user table.
func NewRecipientResolver(users companyMembers) notification.RecipientResolver {
	return &recipientResolver{users: users}
}

func (r *recipientResolver) ResolveRecipients(ctx context.Context, target notification.Target) ([]string, error) {
	switch target.Audience {
	case notification.AudienceUsers:
		return target.UserIDs, nil
	case notification.AudienceAdmins:
		role := user.RoleAdmin
		return r.members(ctx, target, &role)
	case notification.AudienceCompany:
		return r.members(ctx, target, nil)
	}
	return nil, fmt.Errorf("unknown audience %q", target.Audience)
}

func (r *recipientResolver) members(ctx context.Context, target notification.Target, role *user.Role) ([]string, error) {
	ids, err := r.users.ListIDsByCompany(ctx, target.CompanyID, role)
	if err != nil {
		return nil, err
	}
	if len(target.UserIDs) == 0 {
		return ids, nil
	}
	return append(append([]string{}, ids...), target.UserIDs...), nil
}
