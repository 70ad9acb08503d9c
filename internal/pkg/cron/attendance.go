package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type openSessionLister interface {
	ListOpenStartedBefore(ctx context.Context, t time.Time) ([]attendance.Attendance, error)
}

// AttendanceJobs reminds users whose session has been open for too long.
// Sessions are never closed on the user's behalf.
type AttendanceJobs struct {
	attendanceRepo openSessionLister
	notifier       notification.Dispatcher
	clock          clock.Clock
	staleAfter     time.Duration
	interval       time.Duration

	mu       sync.Mutex
	reminded map[string]struct{}
}

func NewAttendanceJobs(attendanceRepo openSessionLister, notifier notification.Dispatcher, clk clock.Clock, staleAfter, interval time.Duration) *AttendanceJobs {
	if staleAfter <= 0 {
		staleAfter = 12 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		notifier:       notifier,
		clock:          clk,
		staleAfter:     staleAfter,
		interval:       interval,
		reminded:       make(map[string]struct{}),
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("remind_stale_open_sessions", j.interval, j.RemindStaleOpenSessions)
}

// RemindStaleOpenSessions sends one reminder per stale session.
func (j *AttendanceJobs) RemindStaleOpenSessions(ctx context.Context) error {
	cutoff := j.clock.Now().Add(-j.staleAfter)

	sessions, err := j.attendanceRepo.ListOpenStartedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale sessions: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	stillOpen := make(map[string]struct{}, len(sessions))
	sent := 0
	for _, s := range sessions {
		stillOpen[s.ID] = struct{}{}
		if _, done := j.reminded[s.ID]; done {
			continue
		}

		err := j.notifier.Notify(ctx, notification.Message{
			Target:  notification.ToUser(s.CompanyID, s.UserID),
			Type:    notification.TypeAttendanceReminder,
			Title:   "Clock-out reminder",
			Message: fmt.Sprintf("You clocked in at %s and have not clocked out yet", s.ClockIn.UTC().Format(time.RFC3339)),
			Data: map[string]interface{}{
				"attendance_id": s.ID,
				"clock_in":      s.ClockIn.UTC().Format(time.RFC3339),
			},
		})
		if err != nil {
			slog.Warn("Cron: failed to queue clock-out reminder", "attendance_id", s.ID, "error", err)
			continue
		}
		j.reminded[s.ID] = struct{}{}
		sent++
	}

	// closed sessions drop out of the reminded set
	for id := range j.reminded {
		if _, ok := stillOpen[id]; !ok {
			delete(j.reminded, id)
		}
	}

	if sent > 0 {
		slog.Info("Cron: sent clock-out reminders", "count", sent)
	}
	return nil
}
