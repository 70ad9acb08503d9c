package holiday

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type HolidayServiceImpl struct {
	holiday.HolidayRepository
	notifier notification.Dispatcher
	clock    clock.Clock
	timeout  time.Duration
}

func NewHolidayService(repo holiday.HolidayRepository, notifier notification.Dispatcher, clk clock.Clock, timeout time.Duration) holiday.HolidayService {
	return &HolidayServiceImpl{
		HolidayRepository: repo,
		notifier:          notifier,
		clock:             clk,
		timeout:           timeout,
	}
}

// Create stores the holiday and announces it to the whole company.
func (s *HolidayServiceImpl) Create(ctx context.Context, identity user.Identity, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if !identity.IsAdmin() {
		return holiday.HolidayResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}

	storeCtx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	created, err := s.HolidayRepository.Create(storeCtx, holiday.Holiday{
		CompanyID: identity.CompanyID,
		Name:      req.Name,
		Date:      req.ParsedDate(),
		CreatedBy: identity.UserID,
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}

	if s.notifier != nil {
		sender := identity.UserID
		err := s.notifier.Notify(context.WithoutCancel(ctx), notification.Message{
			Target:   notification.Broadcast(identity.CompanyID),
			Type:     notification.TypeHolidayAnnouncement,
			SenderID: &sender,
			Title:    "New holiday",
			Message:  fmt.Sprintf("%s on %s", created.Name, created.Date.Format("Monday, 02 January 2006")),
			Data: map[string]interface{}{
				"holiday_id": created.ID,
				"date":       created.Date.Format("2006-01-02"),
			},
		})
		if err != nil {
			log.Printf("[Holiday] announce %s: %v", created.ID, err)
		}
	}

	return mapHoliday(created), nil
}

// List returns the company holidays of year, the current year when zero.
func (s *HolidayServiceImpl) List(ctx context.Context, identity user.Identity, year int) ([]holiday.HolidayResponse, error) {
	if year == 0 {
		year = s.clock.Now().Year()
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	holidays, err := s.HolidayRepository.ListByYear(ctx, identity.CompanyID, year)
	if err != nil {
		return nil, err
	}

	responses := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, mapHoliday(h))
	}
	return responses, nil
}

func (s *HolidayServiceImpl) Delete(ctx context.Context, identity user.Identity, id string) error {
	if !identity.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	return s.HolidayRepository.Delete(ctx, identity.CompanyID, id)
}

func mapHoliday(h holiday.Holiday) holiday.HolidayResponse {
	return holiday.HolidayResponse{
		ID:        h.ID,
		Name:      h.Name,
		Date:      h.Date.Format("2006-01-02"),
		CreatedBy: h.CreatedBy,
		CreatedAt: h.CreatedAt.Format(time.RFC3339),
	}
}
