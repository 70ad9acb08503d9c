package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	ID        string
	UserID    string
	CompanyID string
	Status    Status
	DecidedBy *string
	DecidedAt *time.Time
	CreatedAt time.Time
	Effect    int
}

func (r testRequest) GetID() string        { return r.ID }
func (r testRequest) GetUserID() string    { return r.UserID }
func (r testRequest) GetCompanyID() string { return r.CompanyID }
func (r testRequest) GetStatus() Status    { return r.Status }

type memStore struct {
	mu    sync.Mutex
	items map[string]testRequest
	seq   int
}

func newMemStore() *memStore {
	return &memStore{items: map[string]testRequest{}}
}

func (s *memStore) GetByID(_ context.Context, companyID, id string) (testRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.CompanyID != companyID {
		return testRequest{}, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return item, nil
}

func (s *memStore) Create(_ context.Context, item testRequest) (testRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	item.ID = fmt.Sprintf("req-%d", s.seq)
	item.CreatedAt = time.Date(2025, 1, 1, 0, 0, s.seq, 0, time.UTC)
	s.items[item.ID] = item
	return item, nil
}

func (s *memStore) Decide(_ context.Context, id string, d Decision) (testRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return testRequest{}, ErrNotFound
	}
	if item.Status != StatusPending {
		return testRequest{}, ErrInvalidTransition
	}
	item.Status = d.Status
	item.DecidedBy = &d.DecidedBy
	at := d.DecidedAt
	item.DecidedAt = &at
	s.items[id] = item
	return item, nil
}

func (s *memStore) List(_ context.Context, f ListFilter) ([]testRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []testRequest
	for _, item := range s.items {
		if item.CompanyID != f.CompanyID {
			continue
		}
		if f.UserID != nil && item.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && item.Status != *f.Status {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	start := f.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *memStore) snapshot() map[string]testRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]testRequest, len(s.items))
	for k, v := range s.items {
		cp[k] = v
	}
	return cp
}

func (s *memStore) restore(items map[string]testRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// rollbackTx runs transactions one at a time and restores the store when fn fails.
type rollbackTx struct {
	mu    *sync.Mutex
	store *memStore
}

func (t rollbackTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	before := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(before)
		return err
	}
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notification.Message
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return n.err
}

func (n *recordingNotifier) messages() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Message(nil), n.msgs...)
}

var (
	admin    = user.Identity{UserID: "admin-1", CompanyID: "company-1", Role: user.RoleAdmin}
	employee = user.Identity{UserID: "user-1", CompanyID: "company-1", Role: user.RoleUser}
	outsider = user.Identity{UserID: "admin-2", CompanyID: "company-2", Role: user.RoleAdmin}
)

type fixture struct {
	store    *memStore
	notifier *recordingNotifier
	clock    *clock.Fixed
	engine   *Engine[testRequest]
}

func newFixture(onApprove func(context.Context, testRequest) (testRequest, error)) *fixture {
	f := &fixture{
		store:    newMemStore(),
		notifier: &recordingNotifier{},
		clock:    clock.NewFixed(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	}
	f.engine = NewEngine(Config[testRequest]{
		Kind:      "test",
		Store:     f.store,
		Tx:        rollbackTx{mu: &sync.Mutex{}, store: f.store},
		Clock:     f.clock,
		Notifier:  f.notifier,
		OnApprove: onApprove,
		Events: Events{
			Submitted: notification.TypeLeaveRequest,
			Approved:  notification.TypeLeaveApproved,
			Rejected:  notification.TypeLeaveRejected,
		},
		Timeout: time.Second,
	})
	return f
}

func (f *fixture) submit(t *testing.T, who user.Identity) testRequest {
	t.Helper()
	created, err := f.engine.Submit(context.Background(), who, testRequest{
		UserID:    who.UserID,
		CompanyID: who.CompanyID,
		Status:    StatusPending,
	})
	require.NoError(t, err)
	return created
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusApproved, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_to_%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestEngine_Submit(t *testing.T) {
	f := newFixture(nil)

	created := f.submit(t, employee)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, StatusPending, created.Status)

	msgs := f.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notification.AudienceAdmins, msgs[0].Target.Audience)
	assert.Equal(t, "company-1", msgs[0].Target.CompanyID)
	assert.Equal(t, notification.TypeLeaveRequest, msgs[0].Type)
	assert.Equal(t, created.ID, msgs[0].Data["request_id"])
}

func TestEngine_Submit_RejectsNonPendingAndForeignOwner(t *testing.T) {
	f := newFixture(nil)

	_, err := f.engine.Submit(context.Background(), employee, testRequest{
		UserID: employee.UserID, CompanyID: employee.CompanyID, Status: StatusApproved,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.engine.Submit(context.Background(), employee, testRequest{
		UserID: "someone-else", CompanyID: employee.CompanyID, Status: StatusPending,
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.store.snapshot())
}

func TestEngine_Approve(t *testing.T) {
	f := newFixture(nil)
	created := f.submit(t, employee)

	approved, err := f.engine.Approve(context.Background(), admin, created.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, admin.UserID, *approved.DecidedBy)
	require.NotNil(t, approved.DecidedAt)
	assert.True(t, approved.DecidedAt.Equal(f.clock.Now()))

	msgs := f.notifier.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, notification.AudienceAdmins, msgs[1].Target.Audience)
	assert.Equal(t, []string{employee.UserID}, msgs[1].Target.UserIDs)
	assert.Equal(t, notification.TypeLeaveApproved, msgs[1].Type)
}

func TestEngine_Reject(t *testing.T) {
	f := newFixture(func(ctx context.Context, r testRequest) (testRequest, error) {
		t.Fatal("side effect must not run on rejection")
		return r, nil
	})
	created := f.submit(t, employee)

	rejected, err := f.engine.Reject(context.Background(), admin, created.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	msgs := f.notifier.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, notification.TypeLeaveRejected, msgs[1].Type)
}

func TestEngine_Decide_RequiresAdmin(t *testing.T) {
	f := newFixture(nil)
	created := f.submit(t, employee)

	_, err := f.engine.Approve(context.Background(), employee, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.engine.Reject(context.Background(), employee, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := f.store.GetByID(context.Background(), "company-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestEngine_Decide_NotFound(t *testing.T) {
	f := newFixture(nil)
	created := f.submit(t, employee)

	_, err := f.engine.Approve(context.Background(), admin, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// an admin of another company cannot see the request
	_, err = f.engine.Approve(context.Background(), outsider, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_Decide_TwiceFails(t *testing.T) {
	f := newFixture(nil)
	created := f.submit(t, employee)

	_, err := f.engine.Approve(context.Background(), admin, created.ID)
	require.NoError(t, err)

	_, err = f.engine.Approve(context.Background(), admin, created.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.engine.Reject(context.Background(), admin, created.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	other := f.submit(t, employee)
	_, err = f.engine.Reject(context.Background(), admin, other.ID)
	require.NoError(t, err)
	_, err = f.engine.Approve(context.Background(), admin, other.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEngine_Approve_SideEffectFailureKeepsPending(t *testing.T) {
	errNoFunds := errors.New("insufficient balance")
	f := newFixture(func(ctx context.Context, r testRequest) (testRequest, error) {
		return r, errNoFunds
	})
	created := f.submit(t, employee)

	_, err := f.engine.Approve(context.Background(), admin, created.ID)

	assert.ErrorIs(t, err, errNoFunds)
	stored, err := f.store.GetByID(context.Background(), "company-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Nil(t, stored.DecidedBy)
	// only the submission was announced
	assert.Len(t, f.notifier.messages(), 1)
}

func TestEngine_Approve_SideEffectResultReturned(t *testing.T) {
	f := newFixture(func(ctx context.Context, r testRequest) (testRequest, error) {
		r.Effect = 3
		return r, nil
	})
	created := f.submit(t, employee)

	approved, err := f.engine.Approve(context.Background(), admin, created.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, approved.Effect)
}

func TestEngine_NotifierFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(nil)
	created := f.submit(t, employee)
	f.notifier.err = errors.New("queue full")

	approved, err := f.engine.Approve(context.Background(), admin, created.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
}

func TestEngine_ConcurrentDecisionsOnlyOneWins(t *testing.T) {
	f := newFixture(nil)
	created := f.submit(t, employee)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = f.engine.Approve(context.Background(), admin, created.ID)
			} else {
				_, err = f.engine.Reject(context.Background(), admin, created.ID)
			}
			if err == nil {
				wins.Add(1)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestEngine_List(t *testing.T) {
	f := newFixture(nil)
	other := user.Identity{UserID: "user-2", CompanyID: "company-1", Role: user.RoleUser}
	for i := 0; i < 3; i++ {
		f.submit(t, employee)
	}
	latest := f.submit(t, other)

	t.Run("own only", func(t *testing.T) {
		page, err := f.engine.ListOwn(context.Background(), employee, ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, DefaultPage, page.Page)
		assert.Equal(t, DefaultLimit, page.Limit)
		for _, item := range page.Items {
			assert.Equal(t, employee.UserID, item.UserID)
		}
	})

	t.Run("all requires admin", func(t *testing.T) {
		_, err := f.engine.ListAll(context.Background(), employee, ListFilter{})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("all newest first with pagination", func(t *testing.T) {
		page, err := f.engine.ListAll(context.Background(), admin, ListFilter{Page: 1, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Items, 3)
		assert.Equal(t, latest.ID, page.Items[0].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		_, err := f.engine.Approve(context.Background(), admin, latest.ID)
		require.NoError(t, err)

		approved := StatusApproved
		page, err := f.engine.ListAll(context.Background(), admin, ListFilter{Status: &approved})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, latest.ID, page.Items[0].ID)
	})

	t.Run("unknown status", func(t *testing.T) {
		bogus := Status("archived")
		_, err := f.engine.ListAll(context.Background(), admin, ListFilter{Status: &bogus})
		assert.Error(t, err)
	})

	t.Run("limit capped", func(t *testing.T) {
		page, err := f.engine.ListAll(context.Background(), admin, ListFilter{Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, MaxLimit, page.Limit)
	})
}

func TestEngine_Get(t *testing.T) {
	f := newFixture(nil)
	created := f.submit(t, employee)
	other := user.Identity{UserID: "user-2", CompanyID: "company-1", Role: user.RoleUser}

	got, err := f.engine.Get(context.Background(), employee, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.engine.Get(context.Background(), other, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.engine.Get(context.Background(), admin, created.ID)
	assert.NoError(t, err)
}
