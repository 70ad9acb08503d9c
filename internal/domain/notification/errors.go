package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrQueueFull               = errors.New("notification queue is full")
	ErrDispatcherStopped       = errors.New("notification dispatcher is stopped")
	ErrNoRecipients            = errors.New("notification has no recipients")
)
