package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/export"
)

type ReportServiceImpl struct {
	reportRepo  report.ReportRepository
	companyRepo company.CompanyRepository
	clock       clock.Clock
	timeout     time.Duration
}

func NewReportService(reportRepo report.ReportRepository, companyRepo company.CompanyRepository, clk clock.Clock, timeout time.Duration) report.ReportService {
	return &ReportServiceImpl{
		reportRepo:  reportRepo,
		companyRepo: companyRepo,
		clock:       clk,
		timeout:     timeout,
	}
}

// AttendanceReport builds the per member attendance summary over an inclusive
// date range, in the company's timezone.
func (s *ReportServiceImpl) AttendanceReport(ctx context.Context, identity user.Identity, req report.AttendanceReportRequest) (report.AttendanceReport, error) {
	if !identity.IsAdmin() {
		return report.AttendanceReport{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return report.AttendanceReport{}, err
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	c, err := s.companyRepo.GetByID(ctx, identity.CompanyID)
	if err != nil {
		return report.AttendanceReport{}, err
	}
	loc := c.Location()
	from, to := req.Range(loc)

	users, err := s.reportRepo.GetAttendanceRows(ctx, identity.CompanyID, from, to, req.UserID)
	if err != nil {
		return report.AttendanceReport{}, fmt.Errorf("failed to get attendance data: %w", err)
	}

	for i := range users {
		summarize(&users[i], loc)
	}

	return report.AttendanceReport{
		CompanyName: c.Name,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Timezone:    loc.String(),
		GeneratedAt: s.clock.Now().In(loc).Format(time.RFC3339),
		Users:       users,
	}, nil
}

func summarize(u *report.UserAttendance, loc *time.Location) {
	days := make(map[string]struct{})
	u.DailyLogs = make([]report.AttendanceDailyLog, 0, len(u.Entries))
	u.Summary = report.AttendanceSummary{}

	for _, e := range u.Entries {
		in := e.ClockIn.In(loc)
		log := report.AttendanceDailyLog{
			Date:           in.Format("2006-01-02"),
			DayOfWeek:      in.Weekday().String(),
			ClockIn:        in.Format("15:04"),
			Status:         e.Status,
			TotalWorkHours: e.TotalWorkHours,
		}
		if e.ClockOut != nil {
			out := e.ClockOut.In(loc).Format("15:04")
			log.ClockOut = &out
		} else {
			u.Summary.TotalOpen++
		}
		if e.TotalWorkHours != nil {
			u.Summary.TotalWorkHours += *e.TotalWorkHours
		}
		switch attendance.Status(e.Status) {
		case attendance.StatusPresent:
			u.Summary.TotalPresent++
		case attendance.StatusLate:
			u.Summary.TotalLate++
		}
		days[log.Date] = struct{}{}
		u.DailyLogs = append(u.DailyLogs, log)
	}

	u.Summary.TotalWorkDays = len(days)
	u.Summary.TotalWorkHours = attendance.RoundHours(u.Summary.TotalWorkHours)
}

func (s *ReportServiceImpl) LeaveBalanceReport(ctx context.Context, identity user.Identity) (report.LeaveBalanceReport, error) {
	if !identity.IsAdmin() {
		return report.LeaveBalanceReport{}, user.ErrAdminPrivilegeRequired
	}

	ctx, cancel := database.Bound(ctx, s.timeout)
	defer cancel()

	rows, err := s.reportRepo.GetLeaveBalanceRows(ctx, identity.CompanyID)
	if err != nil {
		return report.LeaveBalanceReport{}, fmt.Errorf("failed to get leave balance data: %w", err)
	}
	if rows == nil {
		rows = []report.LeaveBalanceRow{}
	}

	return report.LeaveBalanceReport{
		GeneratedAt: s.clock.Now().UTC().Format(time.RFC3339),
		Rows:        rows,
	}, nil
}

// ExportAttendance renders one line per session, members without sessions
// get a single "absent" line so they still show up in the export.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, identity user.Identity, req report.AttendanceReportRequest, format report.Format) (report.ExportFile, error) {
	if !format.IsValid() {
		return report.ExportFile{}, report.ErrUnsupportedFormat
	}

	rep, err := s.AttendanceReport(ctx, identity, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	table := AttendanceTable(rep)
	var body []byte
	switch format {
	case report.FormatPDF:
		body, err = export.PDF(table)
	default:
		body, err = export.XLSX(table)
	}
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	return report.ExportFile{
		Filename:    fmt.Sprintf("attendance_%s_%s.%s", req.StartDate, req.EndDate, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// AttendanceTable flattens a report into export rows.
func AttendanceTable(rep report.AttendanceReport) export.Table {
	t := export.Table{
		Title:    fmt.Sprintf("%s Attendance Report", rep.CompanyName),
		Subtitle: fmt.Sprintf("%s to %s (%s)", rep.StartDate, rep.EndDate, rep.Timezone),
		Headers:  []string{"Name", "Email", "Date", "Day", "Clock In", "Clock Out", "Status", "Work Hours"},
		Widths:   []float64{2, 2.5, 1.2, 1.2, 1, 1, 1, 1},
	}

	for _, u := range rep.Users {
		if len(u.DailyLogs) == 0 {
			t.Rows = append(t.Rows, []string{u.Name, u.Email, "-", "-", "-", "-", string(attendance.StatusAbsent), "0.00"})
			continue
		}
		for _, log := range u.DailyLogs {
			clockOut, hours := "-", "-"
			if log.ClockOut != nil {
				clockOut = *log.ClockOut
			}
			if log.TotalWorkHours != nil {
				hours = strconv.FormatFloat(*log.TotalWorkHours, 'f', 2, 64)
			}
			t.Rows = append(t.Rows, []string{u.Name, u.Email, log.Date, log.DayOfWeek, log.ClockIn, clockOut, log.Status, hours})
		}
	}
	return t
}
