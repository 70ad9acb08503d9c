package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetOpenSession(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func decodeClockRequest(w http.ResponseWriter, r *http.Request) (attendance.ClockRequest, bool) {
	var req attendance.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode clock request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return req, false
	}
	return req, true
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}
	req, ok := decodeClockRequest(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}
	req, ok := decodeClockRequest(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// GetOpenSession implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetOpenSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetOpenSession(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func attendanceFilterFrom(r *http.Request) attendance.AttendanceFilter {
	filter := attendance.AttendanceFilter{
		UserID:    optionalQuery(r, "user_id"),
		StartDate: optionalQuery(r, "start_date"),
		EndDate:   optionalQuery(r, "end_date"),
		Status:    optionalQuery(r, "status"),
	}
	filter.Page, filter.Limit = pagination(r, 20)
	return filter
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	results, err := h.attendanceService.GetMyAttendance(r.Context(), identity, attendanceFilterFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	results, err := h.attendanceService.ListAttendance(r.Context(), identity, attendanceFilterFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetAttendance(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
