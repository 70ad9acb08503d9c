package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount  int           `yaml:"worker_count"`  // default: 2
	QueueSize    int           `yaml:"queue_size"`    // default: 1000
	MaxAttempts  int           `yaml:"max_attempts"`  // default: 3
	RetryBackoff time.Duration `yaml:"retry_backoff"` // default: 500ms, doubled per attempt
	CallTimeout  time.Duration `yaml:"call_timeout"`  // default: 5s per delivery attempt
}

func (c *Config) setDefaults() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1000
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 5 * time.Second
	}
}

type job struct {
	msg     notification.Message
	attempt int
}

type service struct {
	repo      notification.Repository
	resolver  notification.RecipientResolver
	hub       *sse.Hub[notification.NotificationResponse]
	bus       notification.Bus
	clock     clock.Clock
	config    Config
	unsubsBus func()

	queue   chan job
	wg      sync.WaitGroup
	retries sync.WaitGroup
	stopCh  chan struct{}

	mu      sync.RWMutex
	stopped bool
}

// NewNotificationService starts the delivery workers. bus may be nil, in which
// case events only reach streams connected to this instance.
func NewNotificationService(
	repo notification.Repository,
	resolver notification.RecipientResolver,
	hub *sse.Hub[notification.NotificationResponse],
	bus notification.Bus,
	clk clock.Clock,
	cfg Config,
) (notification.Service, error) {
	cfg.setDefaults()

	s := &service{
		repo:     repo,
		resolver: resolver,
		hub:      hub,
		bus:      bus,
		clock:    clk,
		config:   cfg,
		queue:    make(chan job, cfg.QueueSize),
		stopCh:   make(chan struct{}),
	}

	if bus != nil {
		unsubscribe, err := bus.Subscribe(func(recipientID string, n notification.NotificationResponse) {
			s.pushLocal(recipientID, n)
		})
		if err != nil {
			return nil, fmt.Errorf("subscribe notification bus: %w", err)
		}
		s.unsubsBus = unsubscribe
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	log.Printf("[NotificationService] Started with %d workers, queue size %d, max attempts %d",
		cfg.WorkerCount, cfg.QueueSize, cfg.MaxAttempts)

	return s, nil
}

// Notify queues msg for delivery and returns immediately.
func (s *service) Notify(ctx context.Context, msg notification.Message) error {
	if !msg.Type.IsValid() {
		return notification.ErrInvalidNotificationType
	}
	return s.enqueue(ctx, job{msg: msg})
}

func (s *service) enqueue(ctx context.Context, j job) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return notification.ErrDispatcherStopped
	}

	select {
	case s.queue <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		log.Printf("[NotificationService] Queue full, dropping %s for %s/%s", j.msg.Type, j.msg.Target.Audience, j.msg.Target.CompanyID)
		return notification.ErrQueueFull
	}
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case j := <-s.queue:
			s.process(id, j)
		case <-s.stopCh:
			// drain what was accepted before Stop
			for {
				select {
				case j := <-s.queue:
					s.process(id, j)
				default:
					return
				}
			}
		}
	}
}

func (s *service) process(workerID int, j job) {
	err := s.deliver(j.msg)
	if err == nil {
		return
	}
	if errors.Is(err, notification.ErrNoRecipients) {
		return
	}

	j.attempt++
	if j.attempt >= s.config.MaxAttempts {
		log.Printf("[NotificationWorker-%d] Dropping %s after %d attempts: %v", workerID, j.msg.Type, j.attempt, err)
		return
	}

	backoff := s.config.RetryBackoff << (j.attempt - 1)
	log.Printf("[NotificationWorker-%d] Delivery of %s failed (attempt %d), retrying in %v: %v", workerID, j.msg.Type, j.attempt, backoff, err)
	s.scheduleRetry(j, backoff)
}

func (s *service) scheduleRetry(j job, backoff time.Duration) {
	s.retries.Add(1)
	go func() {
		defer s.retries.Done()
		timer := time.NewTimer(backoff)
		defer timer.Stop()
		select {
		case <-timer.C:
			if err := s.enqueue(context.Background(), j); err != nil {
				log.Printf("[NotificationService] Retry of %s not queued: %v", j.msg.Type, err)
			}
		case <-s.stopCh:
			log.Printf("[NotificationService] Retry of %s abandoned on shutdown", j.msg.Type)
		}
	}()
}

// deliver resolves, persists and pushes one message. Each attempt gets its own deadline.
func (s *service) deliver(msg notification.Message) error {
	ctx, cancel := database.Bound(context.Background(), s.config.CallTimeout)
	defer cancel()

	recipients, err := s.recipients(ctx, msg)
	if err != nil {
		return err
	}

	recipients, err = s.repo.FilterEnabled(ctx, recipients, msg.Type)
	if err != nil {
		return fmt.Errorf("filter preferences: %w", err)
	}
	if len(recipients) == 0 {
		return notification.ErrNoRecipients
	}

	now := s.clock.Now()
	notifications := make([]*notification.Notification, len(recipients))
	for i, recipientID := range recipients {
		notifications[i] = &notification.Notification{
			ID:          uuid.Must(uuid.NewV7()).String(),
			CompanyID:   msg.Target.CompanyID,
			RecipientID: recipientID,
			SenderID:    msg.SenderID,
			Type:        msg.Type,
			Title:       msg.Title,
			Message:     msg.Message,
			Data:        msg.Data,
			IsRead:      false,
			CreatedAt:   now,
		}
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return fmt.Errorf("persist notifications: %w", err)
	}

	for _, n := range notifications {
		s.push(ctx, n)
	}
	return nil
}

func (s *service) recipients(ctx context.Context, msg notification.Message) ([]string, error) {
	if msg.Target.Audience == notification.AudienceUsers {
		if len(msg.Target.UserIDs) == 0 {
			return nil, notification.ErrNoRecipients
		}
		return dedupe(msg.Target.UserIDs), nil
	}

	ids, err := s.resolver.ResolveRecipients(ctx, msg.Target)
	if err != nil {
		return nil, fmt.Errorf("resolve %s recipients: %w", msg.Target.Audience, err)
	}
	if len(ids) == 0 {
		return nil, notification.ErrNoRecipients
	}
	return dedupe(ids), nil
}

// push hands a stored notification to the bus, or straight to the local hub
// when there is no bus. The bus echoes back to this instance as well.
func (s *service) push(ctx context.Context, n *notification.Notification) {
	resp := toResponse(n)
	if s.bus == nil {
		s.pushLocal(n.RecipientID, resp)
		return
	}
	if err := s.bus.Publish(ctx, resp, n.RecipientID); err != nil {
		log.Printf("[NotificationService] Bus publish failed, delivering locally: %v", err)
		s.pushLocal(n.RecipientID, resp)
	}
}

func (s *service) pushLocal(recipientID string, resp notification.NotificationResponse) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(recipientID, sse.Event[notification.NotificationResponse]{
		UserID: recipientID,
		Event:  "notification",
		Data:   resp,
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// toResponse converts a Notification entity to NotificationResponse
func toResponse(n *notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// GetNotifications retrieves paginated notifications for a user
func (s *service) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	ctx, cancel := database.Bound(ctx, s.config.CallTimeout)
	defer cancel()

	notifications, total, err := s.repo.GetByUserID(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = toResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetUnreadCount returns the count of unread notifications
func (s *service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	ctx, cancel := database.Bound(ctx, s.config.CallTimeout)
	defer cancel()
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks specified notifications as read
func (s *service) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := database.Bound(ctx, s.config.CallTimeout)
	defer cancel()

	_, err := s.repo.MarkAsRead(ctx, req.NotificationIDs, userID)
	return err
}

// MarkAllAsRead marks all notifications as read for a user
func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	ctx, cancel := database.Bound(ctx, s.config.CallTimeout)
	defer cancel()
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Delete removes a notification
func (s *service) Delete(ctx context.Context, userID string, notificationID string) error {
	ctx, cancel := database.Bound(ctx, s.config.CallTimeout)
	defer cancel()
	return s.repo.Delete(ctx, notificationID, userID)
}

// GetPreferences lists every notification type, enabled unless the user switched it off.
func (s *service) GetPreferences(ctx context.Context, userID string) ([]notification.PreferenceResponse, error) {
	ctx, cancel := database.Bound(ctx, s.config.CallTimeout)
	defer cancel()

	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefMap := make(map[notification.NotificationType]*notification.NotificationPreference)
	for _, p := range prefs {
		prefMap[p.NotificationType] = p
	}

	allTypes := notification.AllNotificationTypes()
	responses := make([]notification.PreferenceResponse, len(allTypes))
	for i, t := range allTypes {
		enabled := true
		if p, ok := prefMap[t]; ok {
			enabled = p.PushEnabled
		}
		responses[i] = notification.PreferenceResponse{
			NotificationType: t,
			PushEnabled:      enabled,
		}
	}

	return responses, nil
}

// UpdatePreference updates a notification preference
func (s *service) UpdatePreference(ctx context.Context, userID string, req notification.UpdatePreferenceRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := database.Bound(ctx, s.config.CallTimeout)
	defer cancel()

	return s.repo.UpsertPreference(ctx, &notification.NotificationPreference{
		UserID:           userID,
		NotificationType: req.NotificationType,
		PushEnabled:      req.PushEnabled,
		UpdatedAt:        s.clock.Now(),
	})
}

// Subscribe opens a live stream for a user. It ends when ctx is done or the
// hub shuts down.
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: event.Data}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop refuses new messages, drains the queue and waits for the workers.
func (s *service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopCh)
	s.retries.Wait()
	s.wg.Wait()

	if s.unsubsBus != nil {
		s.unsubsBus()
	}
	log.Println("[NotificationService] Stopped")
}
