package models

import (
	"strings"

	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
)

// CreateUserRequest is the admin create payload.
type CreateUserRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department"`
	Phone      string      `json:"phone"`
}

// NotificationPreferencesPatch updates only the channels that are present.
type NotificationPreferencesPatch struct {
	Email *bool `json:"email,omitempty"`
	SMS   *bool `json:"sms,omitempty"`
	Slack *bool `json:"slack,omitempty"`
	Teams *bool `json:"teams,omitempty"`
}

// Apply merges the patch into prefs.
func (p NotificationPreferencesPatch) Apply(prefs *NotificationPreferences) {
	if p.Email != nil {
		prefs.Email = *p.Email
	}
	if p.SMS != nil {
		prefs.SMS = *p.SMS
	}
	if p.Slack != nil {
		prefs.Slack = *p.Slack
	}
	if p.Teams != nil {
		prefs.Teams = *p.Teams
	}
}

// ProfileUpdateRequest is what any user may change on their own record.
type ProfileUpdateRequest struct {
	Name                    *string                       `json:"name,omitempty"`
	Email                   *string                       `json:"email,omitempty"`
	Department              *string                       `json:"department,omitempty"`
	Phone                   *string                       `json:"phone,omitempty"`
	ProfilePicture          *string                       `json:"profilePicture,omitempty"`
	NotificationPreferences *NotificationPreferencesPatch `json:"notificationPreferences,omitempty"`
}

// UpdateUserRequest extends the profile fields with the admin-only ones.
type UpdateUserRequest struct {
	ProfileUpdateRequest
	Role   *domain.Role `json:"role,omitempty"`
	Status *Status      `json:"status,omitempty"`
}

// ChangePasswordRequest is the self-service password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ApplyProfile writes the whitelisted profile fields onto u. The caller has
// already normalized Email.
func (u *User) ApplyProfile(req ProfileUpdateRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return dErrors.Validation("Name is required")
		}
		u.Name = name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Department != nil {
		u.Department = strings.TrimSpace(*req.Department)
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.ProfilePicture != nil {
		u.ProfilePicture = *req.ProfilePicture
	}
	if req.NotificationPreferences != nil {
		req.NotificationPreferences.Apply(&u.NotificationPreferences)
	}
	return nil
}
