package report

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// ReportService defines the interface for report generation
type ReportService interface {
	AttendanceReport(ctx context.Context, identity user.Identity, req AttendanceReportRequest) (AttendanceReport, error)
	LeaveBalanceReport(ctx context.Context, identity user.Identity) (LeaveBalanceReport, error)

	// ExportAttendance renders the attendance report as a downloadable file
	ExportAttendance(ctx context.Context, identity user.Identity, req AttendanceReportRequest, format Format) (ExportFile, error)
}
