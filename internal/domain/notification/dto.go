package notification

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ============= Request DTOs =============

// MarkAsReadRequest represents a request to mark notifications as read
type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

func (r *MarkAsReadRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.NotificationIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "notification_ids",
			Message: "notification_ids must contain at least one id",
		})
	}
	for _, id := range r.NotificationIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "notification_ids",
				Message: "notification_ids must contain valid UUIDs",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdatePreferenceRequest represents a request to update notification preference
type UpdatePreferenceRequest struct {
	NotificationType NotificationType `json:"notification_type"`
	PushEnabled      bool             `json:"push_enabled"`
}

func (r *UpdatePreferenceRequest) Validate() error {
	if !r.NotificationType.IsValid() {
		return validator.Single("notification_type", "unknown notification_type")
	}
	return nil
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// PreferenceResponse represents a notification preference in API responses
type PreferenceResponse struct {
	NotificationType NotificationType `json:"notification_type"`
	PushEnabled      bool             `json:"push_enabled"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// ============= SSE Event =============

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
