package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

const ledgerPageSize = 50

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	leave.BalanceRepository
	engine  *workflow.Engine[leave.LeaveRequest]
	timeout time.Duration
}

func NewLeaveService(
	requestRepo leave.LeaveRequestRepository,
	balanceRepo leave.BalanceRepository,
	tx database.Transactor,
	notifier notification.Dispatcher,
	clk clock.Clock,
	timeout time.Duration,
) leave.LeaveService {
	s := &LeaveServiceImpl{
		LeaveRequestRepository: requestRepo,
		BalanceRepository:      balanceRepo,
		timeout:                timeout,
	}
	s.engine = workflow.NewEngine(workflow.Config[leave.LeaveRequest]{
		Kind:      "leave",
		Store:     requestRepo,
		Tx:        tx,
		Clock:     clk,
		Notifier:  notifier,
		OnApprove: s.debit,
		Describe:  describe,
		Events: workflow.Events{
			Submitted: notification.TypeLeaveRequest,
			Approved:  notification.TypeLeaveApproved,
			Rejected:  notification.TypeLeaveRejected,
		},
		Timeout: timeout,
	})
	return s
}

// Submit validates the request, checks the balance covers it and stores it as pending.
func (s *LeaveServiceImpl) Submit(ctx context.Context, identity user.Identity, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	leaveType := leave.LeaveType(req.LeaveType)
	duration := leave.Duration(req.Duration)
	points := leave.PointsRequired(duration)

	balanceCtx, cancel := database.Bound(ctx, s.timeout)
	balance, err := s.BalanceRepository.Get(balanceCtx, identity.UserID)
	cancel()
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	if !balance.Covers(leaveType, points) {
		return leave.LeaveRequestResponse{}, fmt.Errorf("%s balance %v, need %v: %w", leaveType, balance[leaveType], points, leave.ErrInsufficientBalance)
	}

	start, end := req.Dates()
	created, err := s.engine.Submit(ctx, identity, leave.LeaveRequest{
		UserID:    identity.UserID,
		CompanyID: identity.CompanyID,
		LeaveType: leaveType,
		Duration:  duration,
		StartDate: start,
		EndDate:   end,
		Points:    points,
		Reason:    req.Reason,
		Status:    workflow.StatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return mapLeaveRequestToResponse(created), nil
}

func (s *LeaveServiceImpl) Approve(ctx context.Context, identity user.Identity, id string) (leave.LeaveRequestResponse, error) {
	approved, err := s.engine.Approve(ctx, identity, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return mapLeaveRequestToResponse(approved), nil
}

func (s *LeaveServiceImpl) Reject(ctx context.Context, identity user.Identity, id string) (leave.LeaveRequestResponse, error) {
	rejected, err := s.engine.Reject(ctx, identity, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return mapLeaveRequestToResponse(rejected), nil
}

func (s *LeaveServiceImpl) Get(ctx context.Context, identity user.Identity, id string) (leave.LeaveRequestResponse, error) {
	request, err := s.engine.Get(ctx, identity, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return mapLeaveRequestToResponse(request), nil
}

func (s *LeaveServiceImpl) ListMine(ctx context.Context, identity user.Identity, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	wf, err := filter.ToWorkflow()
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	page, err := s.engine.ListOwn(ctx, identity, wf)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	return mapLeavePage(page), nil
}

func (s *LeaveServiceImpl) ListAll(ctx context.Context, identity user.Identity, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	wf, err := filter.ToWorkflow()
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	page, err := s.engine.ListAll(ctx, identity, wf)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	return mapLeavePage(page), nil
}

// GetBalance returns the caller's balance, or any company member's for admins.
func (s *LeaveServiceImpl) GetBalance(ctx context.Context, identity user.Identity, userID string) (leave.BalanceResponse, error) {
	if userID == "" {
		userID = identity.UserID
	}
	if userID != identity.UserID && !identity.IsAdmin() {
		return leave.BalanceResponse{}, workflow.ErrForbidden
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	balance, err := s.BalanceRepository.Get(ctx, userID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	return leave.BalanceResponse{UserID: userID, Balances: balance.ToMap()}, nil
}

func (s *LeaveServiceImpl) ListLedger(ctx context.Context, identity user.Identity, userID string) ([]leave.LedgerEntryResponse, error) {
	if userID == "" {
		userID = identity.UserID
	}
	if userID != identity.UserID && !identity.IsAdmin() {
		return nil, workflow.ErrForbidden
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	entries, err := s.BalanceRepository.ListLedger(ctx, userID, ledgerPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave ledger: %w", err)
	}

	responses := make([]leave.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, leave.LedgerEntryResponse{
			ID:             e.ID,
			LeaveType:      string(e.LeaveType),
			LeaveRequestID: e.LeaveRequestID,
			Delta:          e.Delta,
			BalanceAfter:   e.BalanceAfter,
			Note:           e.Note,
			CreatedBy:      e.CreatedBy,
			CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses, nil
}

// debit is the approval side effect. It runs inside the approval transaction,
// so a refused debit leaves the request pending.
func (s *LeaveServiceImpl) debit(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	points := leave.ApprovalPoints(request.StartDate, request.EndDate, request.Duration)

	after, err := s.BalanceRepository.Debit(ctx, request.UserID, request.LeaveType, points)
	if err != nil {
		return request, err
	}

	requestID := request.ID
	if err := s.BalanceRepository.AppendLedger(ctx, leave.LedgerEntry{
		UserID:         request.UserID,
		LeaveType:      request.LeaveType,
		LeaveRequestID: &requestID,
		Delta:          -points,
		BalanceAfter:   after,
		Note:           "leave approved",
		CreatedBy:      request.ApprovedBy,
	}); err != nil {
		return request, fmt.Errorf("failed to append leave ledger: %w", err)
	}

	return s.LeaveRequestRepository.SetPointsDebited(ctx, request.ID, points)
}

func describe(event notification.NotificationType, r leave.LeaveRequest) (string, string) {
	period := r.StartDate.Format("2006-01-02")
	if !r.EndDate.Equal(r.StartDate) {
		period += " to " + r.EndDate.Format("2006-01-02")
	}
	switch event {
	case notification.TypeLeaveRequest:
		return "New leave request", fmt.Sprintf("A %s leave request (%s, %s) is waiting for approval", r.LeaveType, r.Duration, period)
	case notification.TypeLeaveApproved:
		return "Leave approved", fmt.Sprintf("The %s leave for %s has been approved", r.LeaveType, period)
	case notification.TypeLeaveRejected:
		return "Leave rejected", fmt.Sprintf("The %s leave for %s has been rejected", r.LeaveType, period)
	}
	return "Leave request", fmt.Sprintf("Leave request %s is %s", r.ID, r.Status)
}

func mapLeavePage(page workflow.Page[leave.LeaveRequest]) leave.ListLeaveRequestResponse {
	responses := make([]leave.LeaveRequestResponse, 0, len(page.Items))
	for _, r := range page.Items {
		responses = append(responses, mapLeaveRequestToResponse(r))
	}
	return leave.ListLeaveRequestResponse{
		TotalCount:    page.Total,
		Page:          page.Page,
		Limit:         page.Limit,
		TotalPages:    page.TotalPages,
		LeaveRequests: responses,
	}
}

func mapLeaveRequestToResponse(r leave.LeaveRequest) leave.LeaveRequestResponse {
	var approvedAt *string
	if r.ApprovedAt != nil {
		formatted := r.ApprovedAt.Format(time.RFC3339)
		approvedAt = &formatted
	}
	return leave.LeaveRequestResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		UserName:      r.UserName,
		LeaveType:     string(r.LeaveType),
		Duration:      string(r.Duration),
		StartDate:     r.StartDate.Format("2006-01-02"),
		EndDate:       r.EndDate.Format("2006-01-02"),
		Points:        r.Points,
		PointsDebited: r.PointsDebited,
		Reason:        r.Reason,
		Status:        string(r.Status),
		ApprovedBy:    r.ApprovedBy,
		ApprovedAt:    approvedAt,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
}
