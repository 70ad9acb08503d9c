package leave

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	requests map[string]leave.LeaveRequest
	balances map[string]leave.Balance
	ledger   []leave.LedgerEntry
	seq      int
}

func newMemStore() *memStore {
	return &memStore{
		requests: map[string]leave.LeaveRequest{},
		balances: map[string]leave.Balance{},
	}
}

// requests

func (s *memStore) GetByID(_ context.Context, companyID, id string) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok || r.CompanyID != companyID {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (s *memStore) Create(_ context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	r.ID = fmt.Sprintf("leave-%d", s.seq)
	r.CreatedAt = time.Date(2025, 3, 1, 0, 0, s.seq, 0, time.UTC)
	r.UpdatedAt = r.CreatedAt
	s.requests[r.ID] = r
	return r, nil
}

func (s *memStore) Decide(_ context.Context, id string, d workflow.Decision) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if r.Status != workflow.StatusPending {
		return leave.LeaveRequest{}, workflow.ErrInvalidTransition
	}
	by, at := d.DecidedBy, d.DecidedAt
	r.Status = d.Status
	r.ApprovedBy = &by
	r.ApprovedAt = &at
	s.requests[id] = r
	return r, nil
}

func (s *memStore) List(_ context.Context, f workflow.ListFilter) ([]leave.LeaveRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []leave.LeaveRequest
	for _, r := range s.requests {
		if r.CompanyID != f.CompanyID {
			continue
		}
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (s *memStore) SetPointsDebited(_ context.Context, id string, points float64) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.requests[id]
	r.PointsDebited = &points
	s.requests[id] = r
	return r, nil
}

func (s *memStore) CountPendingByCompany(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int64{}
	for _, r := range s.requests {
		if r.Status == workflow.StatusPending {
			out[r.CompanyID]++
		}
	}
	return out, nil
}

// balances

func (s *memStore) Get(_ context.Context, userID string) (leave.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[userID]
	if !ok {
		return nil, leave.ErrBalanceNotFound
	}
	cp := leave.Balance{}
	for k, v := range b {
		cp[k] = v
	}
	return cp, nil
}

func (s *memStore) Init(_ context.Context, userID string, b leave.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = b
	return nil
}

func (s *memStore) Debit(_ context.Context, userID string, t leave.LeaveType, points float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[userID]
	if !ok {
		return 0, leave.ErrBalanceNotFound
	}
	if err := b.Debit(t, points); err != nil {
		return 0, err
	}
	return b[t], nil
}

func (s *memStore) AppendLedger(_ context.Context, e leave.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = fmt.Sprintf("ledger-%d", len(s.ledger)+1)
	s.ledger = append(s.ledger, e)
	return nil
}

func (s *memStore) ListLedger(_ context.Context, userID string, limit int) ([]leave.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []leave.LedgerEntry
	for _, e := range s.ledger {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) balance(userID string, t leave.LeaveType) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID][t]
}

type snapshot struct {
	requests map[string]leave.LeaveRequest
	balances map[string]leave.Balance
	ledger   []leave.LedgerEntry
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		requests: map[string]leave.LeaveRequest{},
		balances: map[string]leave.Balance{},
		ledger:   append([]leave.LedgerEntry(nil), s.ledger...),
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	for k, v := range s.balances {
		b := leave.Balance{}
		for t, p := range v {
			b[t] = p
		}
		snap.balances[k] = b
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests, s.balances, s.ledger = snap.requests, snap.balances, snap.ledger
}

// memTx serialises transactions and rolls the store back on error.
type memTx struct {
	mu    sync.Mutex
	store *memStore
}

func (t *memTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
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

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

var (
	employee = user.Identity{UserID: "user-1", CompanyID: "company-1", Role: user.RoleUser}
	admin    = user.Identity{UserID: "admin-1", CompanyID: "company-1", Role: user.RoleAdmin}
)

type fixture struct {
	store    *memStore
	notifier *recordingNotifier
	svc      leave.LeaveService
}

func newFixture(t *testing.T, balance leave.Balance) *fixture {
	t.Helper()
	f := &fixture{store: newMemStore(), notifier: &recordingNotifier{}}
	require.NoError(t, f.store.Init(context.Background(), employee.UserID, balance))
	f.svc = NewLeaveService(
		f.store, f.store,
		&memTx{store: f.store},
		f.notifier,
		clock.NewFixed(time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)),
		time.Second,
	)
	return f
}

func strPtr(s string) *string { return &s }

func threeDayAnnual() leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{
		LeaveType: "annual",
		Duration:  "full",
		StartDate: "2025-03-10",
		EndDate:   strPtr("2025-03-12"),
		Reason:    "family trip",
	}
}

func TestSubmit_CreatesPendingRequest(t *testing.T) {
	f := newFixture(t, leave.DefaultBalances().Balance())

	resp, err := f.svc.Submit(context.Background(), employee, threeDayAnnual())

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 1.0, resp.Points)
	assert.Nil(t, resp.PointsDebited)
	assert.Equal(t, "2025-03-10", resp.StartDate)
	assert.Equal(t, "2025-03-12", resp.EndDate)
	assert.Equal(t, 1, f.notifier.count())
	// submitting never touches the balance
	assert.Equal(t, 15.0, f.store.balance(employee.UserID, leave.LeaveTypeAnnual))
}

func TestSubmit_ZeroSickBalanceFailsBeforeCreate(t *testing.T) {
	f := newFixture(t, leave.Balance{leave.LeaveTypeSick: 0, leave.LeaveTypeAnnual: 15})

	_, err := f.svc.Submit(context.Background(), employee, leave.CreateLeaveRequest{
		LeaveType: "sick",
		Duration:  "full",
		StartDate: "2025-03-10",
	})

	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.Empty(t, f.store.snapshot().requests)
	assert.Equal(t, 0, f.notifier.count())
}

func TestSubmit_HalfDayNeedsHalfPoint(t *testing.T) {
	f := newFixture(t, leave.Balance{leave.LeaveTypeSick: 0.5})

	resp, err := f.svc.Submit(context.Background(), employee, leave.CreateLeaveRequest{
		LeaveType: "sick",
		Duration:  "morning",
		StartDate: "2025-03-10",
	})

	require.NoError(t, err)
	assert.Equal(t, 0.5, resp.Points)
}

func TestApprove_DebitsApprovalFormula(t *testing.T) {
	f := newFixture(t, leave.DefaultBalances().Balance())
	created, err := f.svc.Submit(context.Background(), employee, threeDayAnnual())
	require.NoError(t, err)

	approved, err := f.svc.Approve(context.Background(), admin, created.ID)

	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.PointsDebited)
	// two whole days between the dates plus one full-day point
	assert.Equal(t, 3.0, *approved.PointsDebited)
	assert.Equal(t, 12.0, f.store.balance(employee.UserID, leave.LeaveTypeAnnual))
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, admin.UserID, *approved.ApprovedBy)

	ledger, err := f.svc.ListLedger(context.Background(), employee, "")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, -3.0, ledger[0].Delta)
	assert.Equal(t, 12.0, ledger[0].BalanceAfter)
	assert.Equal(t, created.ID, *ledger[0].LeaveRequestID)
}

func TestReject_LeavesBalanceUntouched(t *testing.T) {
	f := newFixture(t, leave.DefaultBalances().Balance())
	created, err := f.svc.Submit(context.Background(), employee, threeDayAnnual())
	require.NoError(t, err)

	rejected, err := f.svc.Reject(context.Background(), admin, created.ID)

	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, 15.0, f.store.balance(employee.UserID, leave.LeaveTypeAnnual))
	assert.Empty(t, f.store.snapshot().ledger)
}

func TestApprove_TwiceFailsAndDebitsOnce(t *testing.T) {
	f := newFixture(t, leave.DefaultBalances().Balance())
	created, err := f.svc.Submit(context.Background(), employee, threeDayAnnual())
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), admin, created.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), admin, created.ID)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	_, err = f.svc.Reject(context.Background(), admin, created.ID)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	assert.Equal(t, 12.0, f.store.balance(employee.UserID, leave.LeaveTypeAnnual))
}

func TestApprove_RequiresAdmin(t *testing.T) {
	f := newFixture(t, leave.DefaultBalances().Balance())
	created, err := f.svc.Submit(context.Background(), employee, threeDayAnnual())
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), employee, created.ID)

	assert.ErrorIs(t, err, workflow.ErrForbidden)
	assert.Equal(t, 15.0, f.store.balance(employee.UserID, leave.LeaveTypeAnnual))
}

func TestApprove_UnknownRequest(t *testing.T) {
	f := newFixture(t, leave.DefaultBalances().Balance())

	_, err := f.svc.Approve(context.Background(), admin, "missing")

	assert.ErrorIs(t, err, workflow.ErrNotFound)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestApprove_InsufficientBalanceKeepsPending(t *testing.T) {
	f := newFixture(t, leave.Balance{leave.LeaveTypeAnnual: 2})
	// the request-time estimate of one point passes
	created, err := f.svc.Submit(context.Background(), employee, threeDayAnnual())
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), admin, created.ID)

	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	got, err := f.svc.Get(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Nil(t, got.ApprovedBy)
	assert.Nil(t, got.PointsDebited)
	assert.Equal(t, 2.0, f.store.balance(employee.UserID, leave.LeaveTypeAnnual))
	assert.Empty(t, f.store.snapshot().ledger)

	// it can still be rejected afterwards
	_, err = f.svc.Reject(context.Background(), admin, created.ID)
	assert.NoError(t, err)
}

func TestApprove_ConcurrentApprovalsNeverOverdraw(t *testing.T) {
	f := newFixture(t, leave.Balance{leave.LeaveTypeAnnual: 4})
	var ids []string
	for i := 0; i < 4; i++ {
		created, err := f.svc.Submit(context.Background(), employee, threeDayAnnual())
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	var approved atomic.Int32
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.Approve(context.Background(), admin, id)
			if err == nil {
				approved.Add(1)
				return
			}
			assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int32(1), approved.Load())
	assert.Equal(t, 1.0, f.store.balance(employee.UserID, leave.LeaveTypeAnnual))
}

func TestList(t *testing.T) {
	f := newFixture(t, leave.DefaultBalances().Balance())
	for i := 0; i < 3; i++ {
		_, err := f.svc.Submit(context.Background(), employee, threeDayAnnual())
		require.NoError(t, err)
	}

	mine, err := f.svc.ListMine(context.Background(), employee, leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), mine.TotalCount)
	assert.Equal(t, 10, mine.Limit)

	_, err = f.svc.ListAll(context.Background(), employee, leave.LeaveRequestFilter{})
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	all, err := f.svc.ListAll(context.Background(), admin, leave.LeaveRequestFilter{Status: strPtr("pending")})
	require.NoError(t, err)
	assert.Len(t, all.LeaveRequests, 3)
}

func TestGetBalance(t *testing.T) {
	f := newFixture(t, leave.DefaultBalances().Balance())

	mine, err := f.svc.GetBalance(context.Background(), employee, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"sick": 7, "annual": 15, "unpaid": 0}, mine.Balances)

	_, err = f.svc.GetBalance(context.Background(), user.Identity{UserID: "user-2", CompanyID: "company-1", Role: user.RoleUser}, employee.UserID)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	asAdmin, err := f.svc.GetBalance(context.Background(), admin, employee.UserID)
	require.NoError(t, err)
	assert.Equal(t, employee.UserID, asAdmin.UserID)
}
