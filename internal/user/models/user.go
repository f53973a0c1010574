package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
)

// Status is the account state. Inactive users cannot authenticate.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

const minPasswordLength = 8

// NotificationPreferences selects the channels a user receives notifications on.
type NotificationPreferences struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Slack bool `json:"slack"`
	Teams bool `json:"teams"`
}

// DefaultNotificationPreferences enables e-mail only.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true}
}

// User is a staff account.
//
// Invariants:
//   - Email is trimmed, lowercased and unique
//   - Role is one of the fixed roles
//   - PasswordHash is a bcrypt hash and never serialized
type User struct {
	ID                      uuid.UUID               `json:"id"`
	Name                    string                  `json:"name"`
	Email                   string                  `json:"email"`
	PasswordHash            string                  `json:"-"`
	Role                    domain.Role             `json:"role"`
	Department              string                  `json:"department"`
	Status                  Status                  `json:"status"`
	Phone                   string                  `json:"phone,omitempty"`
	ProfilePicture          string                  `json:"profilePicture,omitempty"`
	NotificationPreferences NotificationPreferences `json:"notificationPreferences"`
	SlackUserID             string                  `json:"slackUserId,omitempty"`
	TeamsUserID             string                  `json:"teamsUserId,omitempty"`
	EmailVerified           bool                    `json:"emailVerified"`
	VerificationToken       string                  `json:"-"`
	ResetPasswordToken      string                  `json:"-"`
	ResetPasswordExpires    *time.Time              `json:"-"`
	CreatedAt               time.Time               `json:"createdAt"`
	UpdatedAt               time.Time               `json:"updatedAt"`
}

// NewUserParams carries the fields accepted at creation.
type NewUserParams struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
	Phone      string
}

// NewUser validates params and hashes the password. Role defaults to Employee.
func NewUser(params NewUserParams, now time.Time) (*User, error) {
	var problems []string

	name := strings.TrimSpace(params.Name)
	if name == "" {
		problems = append(problems, "Name is required")
	}
	email, err := NormalizeEmail(params.Email)
	if err != nil {
		problems = append(problems, dErrors.MessageOf(err))
	}
	role := params.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.IsValid() {
		problems = append(problems, "Invalid role")
	}
	department := strings.TrimSpace(params.Department)
	if err := ValidatePassword(params.Password); err != nil {
		problems = append(problems, dErrors.MessageOf(err))
	}
	if len(problems) > 0 {
		return nil, dErrors.Validation(problems...)
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:                      uuid.New(),
		Name:                    name,
		Email:                   email,
		PasswordHash:            hash,
		Role:                    role,
		Department:              department,
		Status:                  StatusActive,
		Phone:                   strings.TrimSpace(params.Phone),
		NotificationPreferences: DefaultNotificationPreferences(),
		CreatedAt:               now,
		UpdatedAt:               now,
	}, nil
}

// NormalizeEmail trims, lowercases and validates an address.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", dErrors.New(dErrors.CodeValidation, "Email is required")
	}
	if !govalidator.IsEmail(email) {
		return "", dErrors.New(dErrors.CodeValidation, "Please provide a valid email")
	}
	return email, nil
}

// ValidatePassword enforces the password policy.
func ValidatePassword(password string) error {
	trimmed := strings.TrimSpace(password)
	if len(trimmed) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "Password must be at least 8 characters")
	}
	if strings.Contains(strings.ToLower(trimmed), "password") {
		return dErrors.New(dErrors.CodeValidation, "Password cannot contain the word \"password\"")
	}
	return nil
}

// HashPassword returns a bcrypt hash of the trimmed password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))) == nil
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// SetPassword validates and replaces the password hash.
func (u *User) SetPassword(password string, now time.Time) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = now
	return nil
}

// IssueResetToken stores a reset token valid for ttl.
func (u *User) IssueResetToken(token string, now time.Time, ttl time.Duration) {
	expires := now.Add(ttl)
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = &expires
	u.UpdatedAt = now
}

// ClearResetToken makes the reset token single-use.
func (u *User) ClearResetToken(now time.Time) {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	u.UpdatedAt = now
}

// ResetTokenValid reports whether token matches and has not expired.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	return token != "" &&
		u.ResetPasswordToken == token &&
		u.ResetPasswordExpires != nil &&
		now.Before(*u.ResetPasswordExpires)
}

// MarkEmailVerified consumes the verification token.
func (u *User) MarkEmailVerified(now time.Time) {
	u.EmailVerified = true
	u.VerificationToken = ""
	u.UpdatedAt = now
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (u *User) Clone() *User {
	c := *u
	if u.ResetPasswordExpires != nil {
		t := *u.ResetPasswordExpires
		c.ResetPasswordExpires = &t
	}
	return &c
}
