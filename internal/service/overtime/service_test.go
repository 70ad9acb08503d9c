package overtime

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOvertimeRepo struct {
	mu    sync.Mutex
	items map[string]overtime.OvertimeRequest
	seq   int
}

func (m *memOvertimeRepo) GetByID(_ context.Context, companyID, id string) (overtime.OvertimeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.CompanyID != companyID {
		return overtime.OvertimeRequest{}, overtime.ErrOvertimeRequestNotFound
	}
	return r, nil
}

func (m *memOvertimeRepo) Create(_ context.Context, r overtime.OvertimeRequest) (overtime.OvertimeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	r.ID = fmt.Sprintf("ot-%d", m.seq)
	m.items[r.ID] = r
	return r, nil
}

func (m *memOvertimeRepo) Decide(_ context.Context, id string, d workflow.Decision) (overtime.OvertimeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.items[id]
	if r.Status != workflow.StatusPending {
		return overtime.OvertimeRequest{}, workflow.ErrInvalidTransition
	}
	by, at := d.DecidedBy, d.DecidedAt
	r.Status, r.ApprovedBy, r.ApprovedAt = d.Status, &by, &at
	m.items[id] = r
	return r, nil
}

func (m *memOvertimeRepo) List(_ context.Context, f workflow.ListFilter) ([]overtime.OvertimeRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []overtime.OvertimeRequest
	for _, r := range m.items {
		if r.CompanyID == f.CompanyID && (f.UserID == nil || r.UserID == *f.UserID) {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memOvertimeRepo) CountPendingByCompany(context.Context) (map[string]int64, error) {
	return nil, nil
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return nil
}

var (
	employee = user.Identity{UserID: "user-1", CompanyID: "company-1", Role: user.RoleUser}
	admin    = user.Identity{UserID: "admin-1", CompanyID: "company-1", Role: user.RoleAdmin}
)

func newService() (overtime.OvertimeService, *recordingNotifier) {
	n := &recordingNotifier{}
	svc := NewOvertimeService(
		&memOvertimeRepo{items: map[string]overtime.OvertimeRequest{}},
		passthroughTx{},
		n,
		clock.NewFixed(time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)),
		time.Second,
	)
	return svc, n
}

func TestSubmit_Validation(t *testing.T) {
	svc, n := newService()

	tests := []struct {
		name  string
		req   overtime.CreateOvertimeRequest
		field string
	}{
		{"below minimum", overtime.CreateOvertimeRequest{Date: "2025-03-05", Hours: 0.25}, "hours"},
		{"zero hours", overtime.CreateOvertimeRequest{Date: "2025-03-05"}, "hours"},
		{"above a day", overtime.CreateOvertimeRequest{Date: "2025-03-05", Hours: 25}, "hours"},
		{"bad date", overtime.CreateOvertimeRequest{Date: "05-03-2025", Hours: 2}, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), employee, tt.req)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.field)
		})
	}
	assert.Empty(t, n.msgs)
}

func TestSubmitAndApprove(t *testing.T) {
	svc, n := newService()

	created, err := svc.Submit(context.Background(), employee, overtime.CreateOvertimeRequest{
		Date:   "2025-03-05",
		Hours:  0.5,
		Reason: "  release night  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "release night", created.Reason)
	assert.Equal(t, "2025-03-05", created.Date)

	_, err = svc.Approve(context.Background(), employee, created.ID)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	approved, err := svc.Approve(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "2025-03-05T18:00:00Z", *approved.ApprovedAt)

	_, err = svc.Reject(context.Background(), admin, created.ID)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	// submitted to admins, then approved to admins and the requester together
	require.Len(t, n.msgs, 2)
	assert.Equal(t, notification.TypeOvertimeRequest, n.msgs[0].Type)
	assert.Equal(t, notification.TypeOvertimeApproved, n.msgs[1].Type)
	assert.Equal(t, notification.AudienceAdmins, n.msgs[1].Target.Audience)
	assert.Equal(t, []string{employee.UserID}, n.msgs[1].Target.UserIDs)
}

func TestReject(t *testing.T) {
	svc, _ := newService()
	created, err := svc.Submit(context.Background(), employee, overtime.CreateOvertimeRequest{Date: "2025-03-05", Hours: 2})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), admin, created.ID)

	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
}

func TestListMine(t *testing.T) {
	svc, _ := newService()
	for i := 0; i < 2; i++ {
		_, err := svc.Submit(context.Background(), employee, overtime.CreateOvertimeRequest{Date: "2025-03-05", Hours: 1})
		require.NoError(t, err)
	}

	page, err := svc.ListMine(context.Background(), admin, overtime.OvertimeRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.TotalCount)
	assert.NotNil(t, page.OvertimeRequests)

	page, err = svc.ListMine(context.Background(), employee, overtime.OvertimeRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
}
