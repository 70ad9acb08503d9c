package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// Events names the notification type sent on each transition.
type Events struct {
	Submitted notification.NotificationType
	Approved  notification.NotificationType
	Rejected  notification.NotificationType
}

type Config[T Subject] struct {
	Kind     string
	Store    Store[T]
	Tx       database.Transactor
	Clock    clock.Clock
	Notifier notification.Dispatcher
	Events   Events

	// OnApprove runs in the approval transaction after the status update.
	// An error rolls the whole approval back.
	OnApprove func(ctx context.Context, item T) (T, error)

	// Describe renders the notification title and body for an event.
	Describe func(event notification.NotificationType, item T) (title, message string)

	// Timeout bounds each store round trip. Zero leaves the caller deadline in charge.
	Timeout time.Duration
}

type Engine[T Subject] struct {
	cfg Config[T]
}

func NewEngine[T Subject](cfg Config[T]) *Engine[T] {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Describe == nil {
		kind := cfg.Kind
		cfg.Describe = func(event notification.NotificationType, item T) (string, string) {
			return fmt.Sprintf("%s %s", kind, item.GetStatus()), fmt.Sprintf("%s request %s is %s", kind, item.GetID(), item.GetStatus())
		}
	}
	return &Engine[T]{cfg: cfg}
}

// Submit persists a pending request and tells the company admins about it.
func (e *Engine[T]) Submit(ctx context.Context, actor user.Identity, item T) (T, error) {
	var zero T

	if item.GetStatus() != StatusPending {
		return zero, fmt.Errorf("submit %s with status %s: %w", e.cfg.Kind, item.GetStatus(), ErrInvalidTransition)
	}
	if item.GetUserID() != actor.UserID || item.GetCompanyID() != actor.CompanyID {
		return zero, ErrForbidden
	}

	storeCtx, cancel := database.Bound(ctx, e.cfg.Timeout)
	defer cancel()

	created, err := e.cfg.Store.Create(storeCtx, item)
	if err != nil {
		return zero, fmt.Errorf("create %s request: %w", e.cfg.Kind, err)
	}

	e.announce(ctx, e.cfg.Events.Submitted, created, actor, notification.ToCompanyAdmins(created.GetCompanyID()))
	return created, nil
}

func (e *Engine[T]) Approve(ctx context.Context, actor user.Identity, id string) (T, error) {
	return e.decide(ctx, actor, id, StatusApproved)
}

func (e *Engine[T]) Reject(ctx context.Context, actor user.Identity, id string) (T, error) {
	return e.decide(ctx, actor, id, StatusRejected)
}

func (e *Engine[T]) decide(ctx context.Context, actor user.Identity, id string, to Status) (T, error) {
	var zero T

	if !actor.IsAdmin() {
		return zero, ErrForbidden
	}

	storeCtx, cancel := database.Bound(ctx, e.cfg.Timeout)
	defer cancel()

	current, err := e.cfg.Store.GetByID(storeCtx, actor.CompanyID, id)
	if err != nil {
		return zero, err
	}
	if !current.GetStatus().CanTransition(to) {
		return zero, fmt.Errorf("%s request %s is %s: %w", e.cfg.Kind, id, current.GetStatus(), ErrInvalidTransition)
	}

	var decided T
	err = e.cfg.Tx.WithinTransaction(storeCtx, func(txCtx context.Context) error {
		updated, err := e.cfg.Store.Decide(txCtx, id, Decision{
			Status:    to,
			DecidedBy: actor.UserID,
			DecidedAt: e.cfg.Clock.Now(),
		})
		if err != nil {
			return err
		}
		if to == StatusApproved && e.cfg.OnApprove != nil {
			updated, err = e.cfg.OnApprove(txCtx, updated)
			if err != nil {
				return err
			}
		}
		decided = updated
		return nil
	})
	if err != nil {
		return zero, err
	}

	event := e.cfg.Events.Approved
	if to == StatusRejected {
		event = e.cfg.Events.Rejected
	}
	e.announce(ctx, event, decided, actor,
		notification.ToCompanyAdminsAnd(decided.GetCompanyID(), decided.GetUserID()),
	)
	return decided, nil
}

// ListOwn lists the actor's own requests.
func (e *Engine[T]) ListOwn(ctx context.Context, actor user.Identity, filter ListFilter) (Page[T], error) {
	filter.CompanyID = actor.CompanyID
	filter.UserID = &actor.UserID
	return e.list(ctx, filter)
}

// ListAll lists every request of the actor's company. Admins only.
func (e *Engine[T]) ListAll(ctx context.Context, actor user.Identity, filter ListFilter) (Page[T], error) {
	if !actor.IsAdmin() {
		return Page[T]{}, ErrForbidden
	}
	filter.CompanyID = actor.CompanyID
	return e.list(ctx, filter)
}

// Get returns one request. Non-admins only see their own.
func (e *Engine[T]) Get(ctx context.Context, actor user.Identity, id string) (T, error) {
	var zero T

	storeCtx, cancel := database.Bound(ctx, e.cfg.Timeout)
	defer cancel()

	item, err := e.cfg.Store.GetByID(storeCtx, actor.CompanyID, id)
	if err != nil {
		return zero, err
	}
	if !actor.IsAdmin() && item.GetUserID() != actor.UserID {
		return zero, ErrForbidden
	}
	return item, nil
}

func (e *Engine[T]) list(ctx context.Context, filter ListFilter) (Page[T], error) {
	filter.Normalize()
	if filter.Status != nil && !filter.Status.IsValid() {
		return Page[T]{}, validator.Single("status", "status must be one of: pending, approved, rejected")
	}

	storeCtx, cancel := database.Bound(ctx, e.cfg.Timeout)
	defer cancel()

	items, total, err := e.cfg.Store.List(storeCtx, filter)
	if err != nil {
		return Page[T]{}, fmt.Errorf("list %s requests: %w", e.cfg.Kind, err)
	}
	return newPage(items, total, filter), nil
}

// announce hands the event to the dispatcher once the state change is
// committed. Failures are logged and never reach the caller.
func (e *Engine[T]) announce(ctx context.Context, event notification.NotificationType, item T, actor user.Identity, targets ...notification.Target) {
	if e.cfg.Notifier == nil || event == "" {
		return
	}

	title, body := e.cfg.Describe(event, item)
	sender := actor.UserID
	ctx = context.WithoutCancel(ctx)

	for _, target := range targets {
		msg := notification.Message{
			Target:   target,
			Type:     event,
			SenderID: &sender,
			Title:    title,
			Message:  body,
			Data: map[string]interface{}{
				"kind":       e.cfg.Kind,
				"request_id": item.GetID(),
				"user_id":    item.GetUserID(),
				"status":     string(item.GetStatus()),
			},
		}
		if err := e.cfg.Notifier.Notify(ctx, msg); err != nil {
			log.Printf("[Workflow] notify %s for %s request %s: %v", target.Audience, e.cfg.Kind, item.GetID(), err)
		}
	}
}
