package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	company.CompanyRepository
	clock   clock.Clock
	timeout time.Duration
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	companyRepo company.CompanyRepository,
	clk clock.Clock,
	timeout time.Duration,
) attendance.AttendanceService {
	if clk == nil {
		clk = clock.New()
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		CompanyRepository:    companyRepo,
		clock:                clk,
		timeout:              timeout,
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, identity user.Identity, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	now := a.clock.Now()

	_, err := a.AttendanceRepository.GetOpenByUser(ctx, identity.UserID)
	if err == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
	}
	if !errors.Is(err, attendance.ErrNoOpenClockIn) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check open session: %w", err)
	}

	comp, err := a.CompanyRepository.GetByID(ctx, identity.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get company: %w", err)
	}

	if !comp.Geofence.IsConfigured() {
		return attendance.AttendanceResponse{}, attendance.ErrGeofenceNotConfigured
	}
	if !comp.Geofence.Contains(req.Point()) {
		return attendance.AttendanceResponse{}, attendance.ErrOutsideGeofence
	}

	status := attendance.StatusPresent
	if comp.IsLate(now) {
		status = attendance.StatusLate
	}

	created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
		UserID:           identity.UserID,
		CompanyID:        identity.CompanyID,
		ClockIn:          now.UTC(),
		ClockInLatitude:  req.Latitude,
		ClockInLongitude: req.Longitude,
		Fence:            comp.Geofence,
		Status:           status,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyClockedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return mapAttendanceToResponse(created, comp.Location()), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, identity user.Identity, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	now := a.clock.Now()

	open, err := a.AttendanceRepository.GetOpenByUser(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, attendance.ErrNoOpenClockIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get open session: %w", err)
	}

	// The fence stored at clock-in decides, not the current company fence.
	if !open.Fence.Contains(req.Point()) {
		return attendance.AttendanceResponse{}, attendance.ErrOutsideGeofence
	}

	closed, err := a.AttendanceRepository.Close(ctx, open.ID, attendance.Closing{
		ClockOut:       now.UTC(),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		TotalWorkHours: attendance.WorkHours(open.ClockIn, now),
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNoOpenClockIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to close attendance record: %w", err)
	}

	return mapAttendanceToResponse(closed, a.companyLocation(ctx, identity.CompanyID)), nil
}

// GetOpenSession implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetOpenSession(ctx context.Context, identity user.Identity) (attendance.AttendanceResponse, error) {
	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	open, err := a.AttendanceRepository.GetOpenByUser(ctx, identity.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return mapAttendanceToResponse(open, a.companyLocation(ctx, identity.CompanyID)), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, identity user.Identity, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	filter.UserID = nil
	return a.list(ctx, identity, filter, &identity.UserID)
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, identity user.Identity, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if !identity.IsAdmin() {
		return attendance.ListAttendanceResponse{}, user.ErrAdminPrivilegeRequired
	}
	return a.list(ctx, identity, filter, filter.UserID)
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, identity user.Identity, id string) (attendance.AttendanceResponse, error) {
	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	att, err := a.AttendanceRepository.GetByID(ctx, identity.CompanyID, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !identity.IsAdmin() && att.UserID != identity.UserID {
		return attendance.AttendanceResponse{}, attendance.ErrUnauthorized
	}
	return mapAttendanceToResponse(att, a.companyLocation(ctx, identity.CompanyID)), nil
}

// list validates the caller's filter before scoping it to the company and,
// when set, to userID.
func (a *AttendanceServiceImpl) list(ctx context.Context, identity user.Identity, filter attendance.AttendanceFilter, userID *string) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.CompanyID = identity.CompanyID
	filter.UserID = userID

	ctx, cancel := database.Bound(ctx, a.timeout)
	defer cancel()

	attendances, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	loc := a.companyLocation(ctx, identity.CompanyID)
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, mapAttendanceToResponse(att, loc))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// companyLocation only shapes response dates, so lookup failures fall back to UTC.
func (a *AttendanceServiceImpl) companyLocation(ctx context.Context, companyID string) *time.Location {
	comp, err := a.CompanyRepository.GetByID(ctx, companyID)
	if err != nil {
		return time.UTC
	}
	return comp.Location()
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func mapAttendanceToResponse(att attendance.Attendance, loc *time.Location) attendance.AttendanceResponse {
	clockIn := att.ClockIn.In(loc)
	var clockOut *time.Time
	if att.ClockOut != nil {
		out := att.ClockOut.In(loc)
		clockOut = &out
	}

	return attendance.AttendanceResponse{
		ID:                att.ID,
		UserID:            att.UserID,
		UserName:          att.UserName,
		Date:              clockIn.Format("2006-01-02"),
		ClockInTime:       clockIn.Format(time.RFC3339),
		ClockOutTime:      timePtrToString(clockOut),
		ClockInLatitude:   att.ClockInLatitude,
		ClockInLongitude:  att.ClockInLongitude,
		ClockOutLatitude:  att.ClockOutLatitude,
		ClockOutLongitude: att.ClockOutLongitude,
		Geofence:          att.Fence,
		TotalWorkHours:    att.TotalWorkHours,
		Status:            string(att.Status),
		IsLate:            att.Status == attendance.StatusLate,
		IsOpen:            att.IsOpen(),
		CreatedAt:         att.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         att.UpdatedAt.Format(time.RFC3339),
	}
}
