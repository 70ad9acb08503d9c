package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type OvertimeHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
}

type overtimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &overtimeHandlerImpl{overtimeService: overtimeService}
}

func (h *overtimeHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	var req overtime.CreateOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateOvertimeRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.overtimeService.Submit(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime request submitted successfully", result)
}

func (h *overtimeHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.overtimeService.Approve(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime request approved", result)
}

func (h *overtimeHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.overtimeService.Reject(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime request rejected", result)
}

func (h *overtimeHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.overtimeService.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func overtimeFilterFrom(r *http.Request) overtime.OvertimeRequestFilter {
	filter := overtime.OvertimeRequestFilter{
		UserID:    optionalQuery(r, "user_id"),
		Status:    optionalQuery(r, "status"),
		StartDate: optionalQuery(r, "start_date"),
		EndDate:   optionalQuery(r, "end_date"),
	}
	filter.Page, filter.Limit = pagination(r, 10)
	return filter
}

func (h *overtimeHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	results, err := h.overtimeService.ListMine(r.Context(), identity, overtimeFilterFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (h *overtimeHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	results, err := h.overtimeService.ListAll(r.Context(), identity, overtimeFilterFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}
