package audit

import "time"

// Action names a recorded event.
type Action string

const (
	ActionUserRegistered         Action = "user_registered"
	ActionLoginSucceeded         Action = "login_succeeded"
	ActionLoginFailed            Action = "login_failed"
	ActionLogout                 Action = "logout"
	ActionLogoutAll              Action = "logout_all"
	ActionPasswordResetRequested Action = "password_reset_requested"
	ActionPasswordReset          Action = "password_reset"
	ActionPasswordChanged        Action = "password_changed"
	ActionEmailVerified          Action = "email_verified"
	ActionTokenRefreshed         Action = "token_refreshed"

	ActionUserCreated     Action = "user_created"
	ActionUserUpdated     Action = "user_updated"
	ActionUserDeleted     Action = "user_deleted"
	ActionUserRoleChanged Action = "user_role_changed"

	ActionVisitorCreated    Action = "visitor_created"
	ActionVisitorUpdated    Action = "visitor_updated"
	ActionVisitorDeleted    Action = "visitor_deleted"
	ActionVisitorCheckedIn  Action = "visitor_checked_in"
	ActionVisitorCheckedOut Action = "visitor_checked_out"

	ActionShipmentCreated   Action = "shipment_created"
	ActionShipmentUpdated   Action = "shipment_updated"
	ActionShipmentDeleted   Action = "shipment_deleted"
	ActionShipmentInTransit Action = "shipment_in_transit"
	ActionShipmentDelivered Action = "shipment_delivered"

	ActionKeyCreated    Action = "key_created"
	ActionKeyUpdated    Action = "key_updated"
	ActionKeyDeleted    Action = "key_deleted"
	ActionKeyCheckedOut Action = "key_checked_out"
	ActionKeyReturned   Action = "key_returned"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	UserID    string            `json:"userId,omitempty"`
	Action    Action            `json:"action"`
	Subject   string            `json:"subject,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	ClientIP  string            `json:"clientIp,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}
