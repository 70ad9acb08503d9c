package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

type pendingCounter interface {
	CountPendingByCompany(ctx context.Context) (map[string]int64, error)
}

// ApprovalJobs nudges company admins about requests waiting for a decision.
type ApprovalJobs struct {
	leaveRepo    pendingCounter
	overtimeRepo pendingCounter
	notifier     notification.Dispatcher
	interval     time.Duration
}

func NewApprovalJobs(leaveRepo, overtimeRepo pendingCounter, notifier notification.Dispatcher, interval time.Duration) *ApprovalJobs {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &ApprovalJobs{
		leaveRepo:    leaveRepo,
		overtimeRepo: overtimeRepo,
		notifier:     notifier,
		interval:     interval,
	}
}

func (j *ApprovalJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("remind_pending_approvals", j.interval, j.RemindPendingApprovals)
}

func (j *ApprovalJobs) RemindPendingApprovals(ctx context.Context) error {
	leaves, err := j.leaveRepo.CountPendingByCompany(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending leave requests: %w", err)
	}
	overtimes, err := j.overtimeRepo.CountPendingByCompany(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending overtime requests: %w", err)
	}

	companies := make(map[string]struct{}, len(leaves)+len(overtimes))
	for id := range leaves {
		companies[id] = struct{}{}
	}
	for id := range overtimes {
		companies[id] = struct{}{}
	}

	for companyID := range companies {
		l, o := leaves[companyID], overtimes[companyID]
		if l+o == 0 {
			continue
		}
		err := j.notifier.Notify(ctx, notification.Message{
			Target:  notification.ToCompanyAdmins(companyID),
			Type:    notification.TypePendingApprovals,
			Title:   "Requests awaiting approval",
			Message: fmt.Sprintf("%d leave and %d overtime requests are waiting for a decision", l, o),
			Data: map[string]interface{}{
				"pending_leave":    l,
				"pending_overtime": o,
			},
		})
		if err != nil {
			slog.Warn("Cron: failed to queue pending approval reminder", "company_id", companyID, "error", err)
		}
	}
	return nil
}
