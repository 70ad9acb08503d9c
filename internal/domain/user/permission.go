package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"

	// Attendance
	PermissionAttendanceClock   Permission = "attendance.clock"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	// Requests (leave and overtime)
	PermissionRequestCreate  Permission = "request.create"
	PermissionRequestViewOwn Permission = "request.view_own"
	PermissionRequestViewAll Permission = "request.view_all"
	PermissionRequestDecide  Permission = "request.decide"

	// Company Management
	PermissionCompanyView   Permission = "company.view"
	PermissionCompanyManage Permission = "company.manage"

	// Holidays
	PermissionHolidayManage Permission = "holiday.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// User Management
	PermissionUserManage Permission = "user.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionViewOwnProfile,
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionRequestCreate,
		PermissionRequestViewOwn,
		PermissionRequestViewAll,
		PermissionRequestDecide,
		PermissionCompanyView,
		PermissionCompanyManage,
		PermissionHolidayManage,
		PermissionReportsView,
		PermissionUserManage,
	},
	RoleUser: {
		PermissionViewOwnProfile,
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionRequestCreate,
		PermissionRequestViewOwn,
		PermissionCompanyView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
