// Package natsbus fans stored notifications out to every API instance over NATS.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "attendance.notifications"

type envelope struct {
	RecipientID  string                            `json:"recipient_id"`
	Notification notification.NotificationResponse `json:"notification"`
}

type Bus struct {
	conn    *nats.Conn
	subject string
}

func New(conn *nats.Conn, subject string) *Bus {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Bus{conn: conn, subject: subject}
}

// Publish implements notification.Bus.
func (b *Bus) Publish(_ context.Context, n notification.NotificationResponse, recipientID string) error {
	data, err := Encode(recipientID, n)
	if err != nil {
		return err
	}
	if err := b.conn.Publish(b.subject, data); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscribe implements notification.Bus.
func (b *Bus) Subscribe(handler func(recipientID string, n notification.NotificationResponse)) (func(), error) {
	sub, err := b.conn.Subscribe(b.subject, func(msg *nats.Msg) {
		recipientID, n, err := Decode(msg.Data)
		if err != nil {
			log.Printf("[NATS] Failed to decode notification: %v", err)
			return
		}
		handler(recipientID, n)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", b.subject, err)
	}

	log.Printf("[NATS] Subscribed to %s", b.subject)
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("[NATS] Unsubscribe %s: %v", b.subject, err)
		}
	}, nil
}

func Encode(recipientID string, n notification.NotificationResponse) ([]byte, error) {
	data, err := json.Marshal(envelope{RecipientID: recipientID, Notification: n})
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (string, notification.NotificationResponse, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", notification.NotificationResponse{}, fmt.Errorf("unmarshal notification: %w", err)
	}
	if env.RecipientID == "" {
		return "", notification.NotificationResponse{}, fmt.Errorf("notification envelope without recipient")
	}
	return env.RecipientID, env.Notification, nil
}
