package notification

import (
	"context"
)

// Dispatcher is the notification sink consumed by the workflow engine.
// Notify never blocks on delivery; failures are retried and logged out of band.
type Dispatcher interface {
	Notify(ctx context.Context, msg Message) error
}

// Service defines the notification service interface
type Service interface {
	Dispatcher

	// Direct operations
	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID string) error

	// Preferences
	GetPreferences(ctx context.Context, userID string) ([]PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req UpdatePreferenceRequest) error

	// Realtime subscription shared by the SSE and websocket streams
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}
