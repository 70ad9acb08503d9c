package holiday

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memHolidays struct {
	items []holiday.Holiday
}

func (m *memHolidays) Create(_ context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	for _, existing := range m.items {
		if existing.CompanyID == h.CompanyID && existing.Date.Equal(h.Date) {
			return holiday.Holiday{}, holiday.ErrHolidayDateExists
		}
	}
	h.ID = fmt.Sprintf("hol-%d", len(m.items)+1)
	m.items = append(m.items, h)
	return h, nil
}

func (m *memHolidays) ListByYear(_ context.Context, companyID string, year int) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	for _, h := range m.items {
		if h.CompanyID == companyID && h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memHolidays) Delete(_ context.Context, companyID, id string) error {
	for i, h := range m.items {
		if h.ID == id && h.CompanyID == companyID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return holiday.ErrHolidayNotFound
}

type stubNotifier struct {
	msgs []notification.Message
	err  error
}

func (n *stubNotifier) Notify(_ context.Context, msg notification.Message) error {
	n.msgs = append(n.msgs, msg)
	return n.err
}

var (
	admin    = user.Identity{UserID: "admin-1", CompanyID: "company-1", Role: user.RoleAdmin}
	employee = user.Identity{UserID: "user-1", CompanyID: "company-1", Role: user.RoleUser}
)

func TestCreate(t *testing.T) {
	n := &stubNotifier{}
	svc := NewHolidayService(&memHolidays{}, n, clock.NewFixed(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)), time.Second)

	_, err := svc.Create(context.Background(), employee, holiday.CreateHolidayRequest{Name: "New Year", Date: "2025-01-01"})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	created, err := svc.Create(context.Background(), admin, holiday.CreateHolidayRequest{Name: " Independence Day ", Date: "2025-08-17"})
	require.NoError(t, err)
	assert.Equal(t, "Independence Day", created.Name)
	assert.Equal(t, "2025-08-17", created.Date)
	assert.Equal(t, admin.UserID, created.CreatedBy)

	require.Len(t, n.msgs, 1)
	assert.Equal(t, notification.AudienceCompany, n.msgs[0].Target.Audience)
	assert.Equal(t, notification.TypeHolidayAnnouncement, n.msgs[0].Type)

	_, err = svc.Create(context.Background(), admin, holiday.CreateHolidayRequest{Name: "Duplicate", Date: "2025-08-17"})
	assert.ErrorIs(t, err, holiday.ErrHolidayDateExists)
}

func TestCreate_NotifierFailureIgnored(t *testing.T) {
	n := &stubNotifier{err: errors.New("queue full")}
	svc := NewHolidayService(&memHolidays{}, n, clock.New(), time.Second)

	_, err := svc.Create(context.Background(), admin, holiday.CreateHolidayRequest{Name: "New Year", Date: "2025-01-01"})

	assert.NoError(t, err)
}

func TestListAndDelete(t *testing.T) {
	repo := &memHolidays{}
	svc := NewHolidayService(repo, nil, clock.NewFixed(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)), time.Second)
	for _, d := range []string{"2024-12-25", "2025-01-01", "2025-12-25"} {
		_, err := svc.Create(context.Background(), admin, holiday.CreateHolidayRequest{Name: "Holiday", Date: d})
		require.NoError(t, err)
	}

	current, err := svc.List(context.Background(), employee, 0)
	require.NoError(t, err)
	assert.Len(t, current, 2)

	previous, err := svc.List(context.Background(), employee, 2024)
	require.NoError(t, err)
	require.Len(t, previous, 1)

	assert.ErrorIs(t, svc.Delete(context.Background(), employee, previous[0].ID), user.ErrAdminPrivilegeRequired)
	require.NoError(t, svc.Delete(context.Background(), admin, previous[0].ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, previous[0].ID), holiday.ErrHolidayNotFound)
}
