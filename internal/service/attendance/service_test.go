package attendance

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memAttendanceRepo keeps the one-open-record rule the way the partial
// unique index does: the check and the insert happen under one lock.
type memAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Attendance
	seq     int
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: map[string]attendance.Attendance{}}
}

func (r *memAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.UserID == a.UserID && existing.IsOpen() {
			return attendance.Attendance{}, attendance.ErrAlreadyClockedIn
		}
	}
	r.seq++
	a.ID = fmt.Sprintf("att-%d", r.seq)
	a.CreatedAt = a.ClockIn
	a.UpdatedAt = a.ClockIn
	r.records[a.ID] = a
	return a, nil
}

func (r *memAttendanceRepo) GetOpenByUser(_ context.Context, userID string) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.UserID == userID && a.IsOpen() {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrNoOpenClockIn
}

func (r *memAttendanceRepo) Close(_ context.Context, id string, c attendance.Closing) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok || !a.IsOpen() {
		return attendance.Attendance{}, attendance.ErrNoOpenClockIn
	}
	out := c.ClockOut
	lat, lon, hours := c.Latitude, c.Longitude, c.TotalWorkHours
	a.ClockOut = &out
	a.ClockOutLatitude = &lat
	a.ClockOutLongitude = &lon
	a.TotalWorkHours = &hours
	a.UpdatedAt = out
	r.records[id] = a
	return a, nil
}

func (r *memAttendanceRepo) GetByID(_ context.Context, companyID, id string) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok || a.CompanyID != companyID {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *memAttendanceRepo) List(_ context.Context, f attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.CompanyID != f.CompanyID {
			continue
		}
		if f.UserID != nil && a.UserID != *f.UserID {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (r *memAttendanceRepo) ListOpenStartedBefore(_ context.Context, t time.Time) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.IsOpen() && a.ClockIn.Before(t) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAttendanceRepo) openCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.records {
		if a.UserID == userID && a.IsOpen() {
			n++
		}
	}
	return n
}

type memCompanyRepo struct {
	mu      sync.Mutex
	company company.Company
}

func (r *memCompanyRepo) GetByID(_ context.Context, id string) (company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.company.ID {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return r.company, nil
}

func (r *memCompanyRepo) Create(_ context.Context, c company.Company) (company.Company, error) {
	return c, nil
}

func (r *memCompanyRepo) SetOwner(_ context.Context, id, ownerID string) error { return nil }

func (r *memCompanyRepo) Update(_ context.Context, id string, req company.UpdateCompanyRequest) (company.Company, error) {
	return r.company, nil
}

func (r *memCompanyRepo) UpdateWorkingHours(_ context.Context, id string, hours company.WorkingHours) (company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.company.WorkingHours = hours
	return r.company, nil
}

func (r *memCompanyRepo) UpdateGeofence(_ context.Context, id string, fence geofence.Fence) (company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.company.Geofence = fence
	return r.company, nil
}

func (r *memCompanyRepo) List(_ context.Context) ([]company.Company, error) {
	return []company.Company{r.company}, nil
}

var (
	employee = user.Identity{UserID: "user-1", CompanyID: "company-1", Role: user.RoleUser}
	admin    = user.Identity{UserID: "admin-1", CompanyID: "company-1", Role: user.RoleAdmin}
	atCenter = attendance.ClockRequest{Latitude: 10.0, Longitude: 10.0}
)

type fixture struct {
	repo      *memAttendanceRepo
	companies *memCompanyRepo
	clock     *clock.Fixed
	svc       attendance.AttendanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: newMemAttendanceRepo(),
		companies: &memCompanyRepo{company: company.Company{
			ID:           "company-1",
			Name:         "Acme",
			Geofence:     geofence.Fence{CenterLatitude: 10.0, CenterLongitude: 10.0, RadiusMeters: 50},
			WorkingHours: company.WorkingHours{Start: "09:00", End: "17:00"},
			Timezone:     "UTC",
		}},
		clock: clock.NewFixed(time.Date(2025, 3, 10, 8, 59, 0, 0, time.UTC)),
	}
	f.svc = NewAttendanceService(f.repo, f.companies, f.clock, time.Second)
	return f
}

func TestClockIn_LatenessAgainstWorkingHours(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want attendance.Status
	}{
		{"before start is present", time.Date(2025, 3, 10, 8, 59, 0, 0, time.UTC), attendance.StatusPresent},
		{"exactly at start is present", time.Date(2025, 3, 10, 9, 0, 59, 0, time.UTC), attendance.StatusPresent},
		{"after start is late", time.Date(2025, 3, 10, 9, 1, 0, 0, time.UTC), attendance.StatusLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.clock.Set(tt.at)

			resp, err := f.svc.ClockIn(context.Background(), employee, atCenter)

			require.NoError(t, err)
			assert.Equal(t, string(tt.want), resp.Status)
			assert.Equal(t, tt.want == attendance.StatusLate, resp.IsLate)
			assert.True(t, resp.IsOpen)
			assert.Equal(t, 50.0, resp.Geofence.RadiusMeters)
		})
	}
}

func TestClockIn_LatenessUsesCompanyTimezone(t *testing.T) {
	f := newFixture(t)
	f.companies.company.Timezone = "Asia/Jakarta" // UTC+7
	f.clock.Set(time.Date(2025, 3, 10, 1, 59, 0, 0, time.UTC))

	resp, err := f.svc.ClockIn(context.Background(), employee, atCenter)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
	assert.Equal(t, "2025-03-10", resp.Date)

	other := user.Identity{UserID: "user-2", CompanyID: "company-1", Role: user.RoleUser}
	f.clock.Set(time.Date(2025, 3, 10, 2, 1, 0, 0, time.UTC))

	resp, err = f.svc.ClockIn(context.Background(), other, atCenter)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusLate), resp.Status)
}

func TestClockIn_OutsideGeofence(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ClockIn(context.Background(), employee, attendance.ClockRequest{Latitude: 10.001, Longitude: 10.001})

	assert.ErrorIs(t, err, attendance.ErrOutsideGeofence)
	assert.Equal(t, 0, f.repo.openCount(employee.UserID))
}

func TestClockIn_GeofenceNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.companies.company.Geofence = geofence.Fence{}

	_, err := f.svc.ClockIn(context.Background(), employee, atCenter)

	assert.ErrorIs(t, err, attendance.ErrGeofenceNotConfigured)
}

func TestClockIn_InvalidCoordinates(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ClockIn(context.Background(), employee, attendance.ClockRequest{Latitude: 91, Longitude: 10})

	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestClockIn_AlreadyClockedIn(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ClockIn(context.Background(), employee, atCenter)
	require.NoError(t, err)

	_, err = f.svc.ClockIn(context.Background(), employee, atCenter)

	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
	assert.Equal(t, 1, f.repo.openCount(employee.UserID))
}

func TestClockIn_ConcurrentAttemptsLeaveOneOpenRecord(t *testing.T) {
	f := newFixture(t)

	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ClockIn(context.Background(), employee, atCenter)
			if err == nil {
				successes.Add(1)
				return
			}
			assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, 1, f.repo.openCount(employee.UserID))
}

func TestClockOut_WithoutClockIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ClockOut(context.Background(), employee, atCenter)

	assert.ErrorIs(t, err, attendance.ErrNoOpenClockIn)
}

func TestClockOut_ComputesWorkHours(t *testing.T) {
	f := newFixture(t)
	clockIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f.clock.Set(clockIn)
	_, err := f.svc.ClockIn(context.Background(), employee, atCenter)
	require.NoError(t, err)

	f.clock.Advance(8*time.Hour + 20*time.Minute)
	resp, err := f.svc.ClockOut(context.Background(), employee, atCenter)

	require.NoError(t, err)
	require.NotNil(t, resp.TotalWorkHours)
	want := f.clock.Now().Sub(clockIn).Hours()
	assert.InDelta(t, want, *resp.TotalWorkHours, 0.005)
	assert.Equal(t, 8.33, *resp.TotalWorkHours)
	assert.False(t, resp.IsOpen)
	require.NotNil(t, resp.ClockOutTime)
	assert.Equal(t, 0, f.repo.openCount(employee.UserID))

	_, err = f.svc.ClockOut(context.Background(), employee, atCenter)
	assert.ErrorIs(t, err, attendance.ErrNoOpenClockIn)
}

func TestClockOut_UsesFenceSnapshot(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ClockIn(context.Background(), employee, atCenter)
	require.NoError(t, err)

	// the company moves its fence while the session is open
	f.companies.company.Geofence = geofence.Fence{CenterLatitude: -6.2, CenterLongitude: 106.8, RadiusMeters: 100}

	_, err = f.svc.ClockOut(context.Background(), employee, attendance.ClockRequest{Latitude: -6.2, Longitude: 106.8})
	assert.ErrorIs(t, err, attendance.ErrOutsideGeofence)

	f.clock.Advance(time.Hour)
	resp, err := f.svc.ClockOut(context.Background(), employee, atCenter)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *resp.TotalWorkHours)
}

func TestClockInAfterClockOut(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ClockIn(context.Background(), employee, atCenter)
	require.NoError(t, err)
	f.clock.Advance(4 * time.Hour)
	_, err = f.svc.ClockOut(context.Background(), employee, atCenter)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.svc.ClockIn(context.Background(), employee, atCenter)

	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.openCount(employee.UserID))
}

func TestGetOpenSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetOpenSession(context.Background(), employee)
	assert.ErrorIs(t, err, attendance.ErrNoOpenClockIn)

	created, err := f.svc.ClockIn(context.Background(), employee, atCenter)
	require.NoError(t, err)

	open, err := f.svc.GetOpenSession(context.Background(), employee)
	require.NoError(t, err)
	assert.Equal(t, created.ID, open.ID)
}

func TestListAttendance(t *testing.T) {
	f := newFixture(t)
	other := user.Identity{UserID: "user-2", CompanyID: "company-1", Role: user.RoleUser}
	_, err := f.svc.ClockIn(context.Background(), employee, atCenter)
	require.NoError(t, err)
	_, err = f.svc.ClockIn(context.Background(), other, atCenter)
	require.NoError(t, err)

	mine, err := f.svc.GetMyAttendance(context.Background(), employee, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)
	assert.Equal(t, 20, mine.Limit)

	_, err = f.svc.ListAttendance(context.Background(), employee, attendance.AttendanceFilter{})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	all, err := f.svc.ListAttendance(context.Background(), admin, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
	assert.Equal(t, "1-2 of 2", all.Showing)
}

func TestGetMyAttendance_ScopesToCaller(t *testing.T) {
	f := newFixture(t)
	other := user.Identity{UserID: "user-2", CompanyID: "company-1", Role: user.RoleUser}
	_, err := f.svc.ClockIn(context.Background(), employee, atCenter)
	require.NoError(t, err)
	_, err = f.svc.ClockIn(context.Background(), other, atCenter)
	require.NoError(t, err)

	// a user_id sent by the caller is ignored, the caller's own id is not validated
	otherID := uuid.Must(uuid.NewV7()).String()
	mine, err := f.svc.GetMyAttendance(context.Background(), employee, attendance.AttendanceFilter{UserID: &otherID})
	require.NoError(t, err)
	require.Len(t, mine.Attendances, 1)
	assert.Equal(t, employee.UserID, mine.Attendances[0].UserID)

	bad := "lunch"
	_, err = f.svc.GetMyAttendance(context.Background(), employee, attendance.AttendanceFilter{Status: &bad})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "status", verrs[0].Field)
}

func TestGetAttendance_OwnOnlyForUsers(t *testing.T) {
	f := newFixture(t)
	other := user.Identity{UserID: "user-2", CompanyID: "company-1", Role: user.RoleUser}
	created, err := f.svc.ClockIn(context.Background(), employee, atCenter)
	require.NoError(t, err)

	_, err = f.svc.GetAttendance(context.Background(), other, created.ID)
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)

	got, err := f.svc.GetAttendance(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.UserID, got.UserID)
}

func TestWorkHours(t *testing.T) {
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 8.0, attendance.WorkHours(in, in.Add(8*time.Hour)))
	assert.Equal(t, 0.25, attendance.WorkHours(in, in.Add(15*time.Minute)))
	assert.Equal(t, 1.5, attendance.WorkHours(in.Add(90*time.Minute), in))
	assert.Equal(t, 0.0, attendance.WorkHours(in, in))
}
