package dashboard

// ========== COMPANY DASHBOARD ==========

// CompanyDashboardResponse is the combined response for GET /dashboard
type CompanyDashboardResponse struct {
	Date             string                  `json:"date"`
	Timezone         string                  `json:"timezone"`
	AttendanceStats  AttendanceStatsResponse `json:"attendance_stats"`
	PendingRequests  PendingRequestsResponse `json:"pending_requests"`
	MonthlyTrend     []DailyTrendResponse    `json:"monthly_trend"`
	UpcomingHolidays []UpcomingHoliday       `json:"upcoming_holidays"`
}

// AttendanceStatsResponse counts members by how they attended on one day
type AttendanceStatsResponse struct {
	Members        int64   `json:"members"`
	Attended       int64   `json:"attended"`
	OnTime         int64   `json:"on_time"`
	Late           int64   `json:"late"`
	Absent         int64   `json:"absent"` // no session started that day
	OpenNow        int64   `json:"open_now"`
	AttendanceRate float64 `json:"attendance_rate"`
	LateRate       float64 `json:"late_rate"`
}

type PendingRequestsResponse struct {
	Leave    int64 `json:"leave"`
	Overtime int64 `json:"overtime"`
	Total    int64 `json:"total"`
}

// DailyTrendResponse is one bar of the monthly chart
type DailyTrendResponse struct {
	Date     string `json:"date"` // YYYY-MM-DD in company time
	Attended int64  `json:"attended"`
	Late     int64  `json:"late"`
}

type UpcomingHoliday struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	DaysLeft int    `json:"days_left"`
}

// ========== MY DASHBOARD ==========

// MyDashboardResponse is the combined response for GET /dashboard/me
type MyDashboardResponse struct {
	Month            string                  `json:"month"` // YYYY-MM
	OpenSession      *OpenSessionResponse    `json:"open_session"`
	MonthSummary     MonthSummaryResponse    `json:"month_summary"`
	LeaveBalances    map[string]float64      `json:"leave_balances"`
	PendingRequests  PendingRequestsResponse `json:"pending_requests"`
	UpcomingHolidays []UpcomingHoliday       `json:"upcoming_holidays"`
}

type OpenSessionResponse struct {
	ID          string  `json:"id"`
	ClockInTime string  `json:"clock_in_time"`
	Status      string  `json:"status"`
	HoursSoFar  float64 `json:"hours_so_far"`
}

type MonthSummaryResponse struct {
	DaysAttended int64   `json:"days_attended"`
	LateSessions int64   `json:"late_sessions"`
	WorkedHours  float64 `json:"worked_hours"`
}

// ========== REPOSITORY MODELS ==========

type DailyStats struct {
	Members  int64
	Attended int64
	Late     int64
	OpenNow  int64
}

type PendingCounts struct {
	Leave    int64
	Overtime int64
}

type DayCount struct {
	Date     string
	Attended int64
	Late     int64
}

type UserMonthStats struct {
	DaysAttended int64
	LateSessions int64
	WorkedHours  float64
}
