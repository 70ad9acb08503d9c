package overtime

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type OvertimeServiceImpl struct {
	engine *workflow.Engine[overtime.OvertimeRequest]
}

// NewOvertimeService builds the overtime workflow. Approval has no side effect
// beyond the status change.
func NewOvertimeService(
	repo overtime.OvertimeRequestRepository,
	tx database.Transactor,
	notifier notification.Dispatcher,
	clk clock.Clock,
	timeout time.Duration,
) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		engine: workflow.NewEngine(workflow.Config[overtime.OvertimeRequest]{
			Kind:     "overtime",
			Store:    repo,
			Tx:       tx,
			Clock:    clk,
			Notifier: notifier,
			Describe: describe,
			Events: workflow.Events{
				Submitted: notification.TypeOvertimeRequest,
				Approved:  notification.TypeOvertimeApproved,
				Rejected:  notification.TypeOvertimeRejected,
			},
			Timeout: timeout,
		}),
	}
}

func (s *OvertimeServiceImpl) Submit(ctx context.Context, identity user.Identity, req overtime.CreateOvertimeRequest) (overtime.OvertimeRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}

	created, err := s.engine.Submit(ctx, identity, overtime.OvertimeRequest{
		UserID:    identity.UserID,
		CompanyID: identity.CompanyID,
		Date:      req.ParsedDate(),
		Hours:     req.Hours,
		Reason:    req.Reason,
		Status:    workflow.StatusPending,
	})
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}
	return mapOvertimeToResponse(created), nil
}

func (s *OvertimeServiceImpl) Approve(ctx context.Context, identity user.Identity, id string) (overtime.OvertimeRequestResponse, error) {
	approved, err := s.engine.Approve(ctx, identity, id)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}
	return mapOvertimeToResponse(approved), nil
}

func (s *OvertimeServiceImpl) Reject(ctx context.Context, identity user.Identity, id string) (overtime.OvertimeRequestResponse, error) {
	rejected, err := s.engine.Reject(ctx, identity, id)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}
	return mapOvertimeToResponse(rejected), nil
}

func (s *OvertimeServiceImpl) Get(ctx context.Context, identity user.Identity, id string) (overtime.OvertimeRequestResponse, error) {
	request, err := s.engine.Get(ctx, identity, id)
	if err != nil {
		return overtime.OvertimeRequestResponse{}, err
	}
	return mapOvertimeToResponse(request), nil
}

func (s *OvertimeServiceImpl) ListMine(ctx context.Context, identity user.Identity, filter overtime.OvertimeRequestFilter) (overtime.ListOvertimeRequestResponse, error) {
	wf, err := filter.ToWorkflow()
	if err != nil {
		return overtime.ListOvertimeRequestResponse{}, err
	}
	page, err := s.engine.ListOwn(ctx, identity, wf)
	if err != nil {
		return overtime.ListOvertimeRequestResponse{}, err
	}
	return mapOvertimePage(page), nil
}

func (s *OvertimeServiceImpl) ListAll(ctx context.Context, identity user.Identity, filter overtime.OvertimeRequestFilter) (overtime.ListOvertimeRequestResponse, error) {
	wf, err := filter.ToWorkflow()
	if err != nil {
		return overtime.ListOvertimeRequestResponse{}, err
	}
	page, err := s.engine.ListAll(ctx, identity, wf)
	if err != nil {
		return overtime.ListOvertimeRequestResponse{}, err
	}
	return mapOvertimePage(page), nil
}

func describe(event notification.NotificationType, r overtime.OvertimeRequest) (string, string) {
	day := r.Date.Format("2006-01-02")
	switch event {
	case notification.TypeOvertimeRequest:
		return "New overtime request", fmt.Sprintf("Overtime of %v hours on %s is waiting for approval", r.Hours, day)
	case notification.TypeOvertimeApproved:
		return "Overtime approved", fmt.Sprintf("Your overtime of %v hours on %s has been approved", r.Hours, day)
	case notification.TypeOvertimeRejected:
		return "Overtime rejected", fmt.Sprintf("Your overtime of %v hours on %s has been rejected", r.Hours, day)
	}
	return "Overtime request", fmt.Sprintf("Overtime request %s is %s", r.ID, r.Status)
}

func mapOvertimePage(page workflow.Page[overtime.OvertimeRequest]) overtime.ListOvertimeRequestResponse {
	responses := make([]overtime.OvertimeRequestResponse, 0, len(page.Items))
	for _, r := range page.Items {
		responses = append(responses, mapOvertimeToResponse(r))
	}
	return overtime.ListOvertimeRequestResponse{
		TotalCount:       page.Total,
		Page:             page.Page,
		Limit:            page.Limit,
		TotalPages:       page.TotalPages,
		OvertimeRequests: responses,
	}
}

func mapOvertimeToResponse(r overtime.OvertimeRequest) overtime.OvertimeRequestResponse {
	var approvedAt *string
	if r.ApprovedAt != nil {
		formatted := r.ApprovedAt.Format(time.RFC3339)
		approvedAt = &formatted
	}
	return overtime.OvertimeRequestResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		UserName:   r.UserName,
		Date:       r.Date.Format("2006-01-02"),
		Hours:      r.Hours,
		Reason:     r.Reason,
		Status:     string(r.Status),
		ApprovedBy: r.ApprovedBy,
		ApprovedAt: approvedAt,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
}
