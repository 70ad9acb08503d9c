package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	GetAttendanceReport(w http.ResponseWriter, r *http.Request)
	GetLeaveBalanceReport(w http.ResponseWriter, r *http.Request)
	ExportAttendanceReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func attendanceReportRequest(r *http.Request) report.AttendanceReportRequest {
	return report.AttendanceReportRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		UserID:    optionalQuery(r, "user_id"),
	}
}

// GetAttendanceReport handles GET /reports/attendance
func (h *reportHandlerImpl) GetAttendanceReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.AttendanceReport(r.Context(), identity, attendanceReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetLeaveBalanceReport handles GET /reports/leave-balance
func (h *reportHandlerImpl) GetLeaveBalanceReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.LeaveBalanceReport(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportAttendanceReport handles GET /reports/attendance/export?format=xlsx|pdf
func (h *reportHandlerImpl) ExportAttendanceReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	format := report.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = report.FormatXLSX
	}

	file, err := h.reportService.ExportAttendance(r.Context(), identity, attendanceReportRequest(r), format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Body); err != nil {
		slog.Warn("failed to write export", "filename", file.Filename, "error", err)
	}
}
