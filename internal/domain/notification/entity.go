package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveRequest        NotificationType = "leave_request"
	TypeLeaveApproved       NotificationType = "leave_approved"
	TypeLeaveRejected       NotificationType = "leave_rejected"
	TypeOvertimeRequest     NotificationType = "overtime_request"
	TypeOvertimeApproved    NotificationType = "overtime_approved"
	TypeOvertimeRejected    NotificationType = "overtime_rejected"
	TypeAttendanceReminder  NotificationType = "attendance_reminder"
	TypePendingApprovals    NotificationType = "pending_approvals"
	TypeHolidayAnnouncement NotificationType = "holiday_announcement"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeLeaveRequest,
		TypeLeaveApproved,
		TypeLeaveRejected,
		TypeOvertimeRequest,
		TypeOvertimeApproved,
		TypeOvertimeRejected,
		TypeAttendanceReminder,
		TypePendingApprovals,
		TypeHolidayAnnouncement,
	}
}

func (t NotificationType) IsValid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	CompanyID   string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// NotificationPreference represents user preference for a notification type
type NotificationPreference struct {
	ID               string
	UserID           string
	NotificationType NotificationType
	PushEnabled      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Audience selects who a dispatched message is delivered to.
type Audience string

const (
	AudienceUsers   Audience = "users"
	AudienceAdmins  Audience = "admins"
	AudienceCompany Audience = "company"
)

// Target names the recipients of a message. Admin and company audiences are
// resolved to user ids when the message is delivered; UserIDs on those
// audiences are added to the resolved set.
type Target struct {
	Audience  Audience
	CompanyID string
	UserIDs   []string
}

func ToUser(companyID, userID string) Target {
	return Target{Audience: AudienceUsers, CompanyID: companyID, UserIDs: []string{userID}}
}

func ToUsers(companyID string, userIDs ...string) Target {
	return Target{Audience: AudienceUsers, CompanyID: companyID, UserIDs: userIDs}
}

func ToCompanyAdmins(companyID string) Target {
	return Target{Audience: AudienceAdmins, CompanyID: companyID}
}

// ToCompanyAdminsAnd reaches the company admins plus userIDs in one message;
// a user who is also an admin is notified once.
func ToCompanyAdminsAnd(companyID string, userIDs ...string) Target {
	return Target{Audience: AudienceAdmins, CompanyID: companyID, UserIDs: userIDs}
}

func Broadcast(companyID string) Target {
	return Target{Audience: AudienceCompany, CompanyID: companyID}
}

// Message is one event handed to the dispatcher.
type Message struct {
	Target   Target
	Type     NotificationType
	SenderID *string
	Title    string
	Message  string
	Data     map[string]interface{}
}
