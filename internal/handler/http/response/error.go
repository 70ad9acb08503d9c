package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/job"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/master/position"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// retryAfterSeconds is the hint sent with 503 responses.
const retryAfterSeconds = 5

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrGoogleAccountUnknown):
		NotFound(w, err.Error())
	case errors.Is(err, oauth.ErrEmailNotVerified):
		Forbidden(w, "Google email not verified")

	// Attendance state machine
	case errors.Is(err, attendance.ErrAlreadyClockedIn),
		errors.Is(err, attendance.ErrNoOpenClockIn):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrGeofenceNotConfigured):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, attendance.ErrOutsideGeofence),
		errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Leave ledger and request workflow
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, workflow.ErrInvalidTransition):
		Conflict(w, "Request already processed")
	case errors.Is(err, workflow.ErrForbidden):
		Forbidden(w, "You do not have access to this request")
	case errors.Is(err, workflow.ErrNotFound):
		NotFound(w, err.Error())

	// User and company
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrCannotDemoteOwner),
		errors.Is(err, user.ErrCannotDeleteSelf),
		errors.Is(err, company.ErrNotCompanyOwnerAdmin):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrInvalidRole):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, company.ErrCompanyNameExists):
		Conflict(w, "Company name already exists")
	case errors.Is(err, company.ErrEmptyPatch),
		errors.Is(err, company.ErrInvalidCompanyName):
		BadRequest(w, err.Error(), nil)

	// Holidays and master data
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, holiday.ErrHolidayDateExists):
		Conflict(w, err.Error())
	case errors.Is(err, department.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, department.ErrDepartmentNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, position.ErrPositionNotFound):
		NotFound(w, "Position not found")
	case errors.Is(err, position.ErrPositionNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, job.ErrJobNotFound):
		NotFound(w, "Job not found")
	case errors.Is(err, job.ErrJobTitleExists):
		Conflict(w, err.Error())

	// Notifications
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrInvalidNotificationType):
		BadRequest(w, err.Error(), nil)

	// Reports
	case errors.Is(err, report.ErrInvalidDateRange),
		errors.Is(err, report.ErrRangeTooLong),
		errors.Is(err, report.ErrUnsupportedFormat),
		errors.Is(err, dashboard.ErrInvalidDate):
		BadRequest(w, err.Error(), nil)

	// Infrastructure
	case database.IsRetryable(err):
		ServiceUnavailable(w, retryAfterSeconds)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
