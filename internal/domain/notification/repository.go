package notification

import (
	"context"
)

// Repository defines the notification repository interface
type Repository interface {
	// Notifications CRUD
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*Notification, int, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, ids []string, userID string) (int64, error)
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string, userID string) error

	// Preferences
	GetPreferences(ctx context.Context, userID string) ([]*NotificationPreference, error)
	UpsertPreference(ctx context.Context, pref *NotificationPreference) error
	FilterEnabled(ctx context.Context, userIDs []string, notifType NotificationType) ([]string, error)
}

// RecipientResolver expands admin and company audiences to user ids.
type RecipientResolver interface {
	ResolveRecipients(ctx context.Context, target Target) ([]string, error)
}

// Bus carries persisted notifications between service instances.
type Bus interface {
	Publish(ctx context.Context, n NotificationResponse, recipientID string) error
	Subscribe(handler func(recipientID string, n NotificationResponse)) (func(), error)
}
