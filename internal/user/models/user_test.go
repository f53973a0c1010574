package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
)

func validParams() NewUserParams {
	return NewUserParams{
		Name:       " Jane Doe ",
		Email:      " Jane@Example.COM ",
		Password:   "s3cure-secret",
		Department: "Operations",
	}
}

func TestNewUser(t *testing.T) {
	now := time.Now()

	t.Run("normalizes and defaults", func(t *testing.T) {
		u, err := NewUser(validParams(), now)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", u.Name)
		assert.Equal(t, "jane@example.com", u.Email)
		assert.Equal(t, domain.RoleEmployee, u.Role)
		assert.Equal(t, StatusActive, u.Status)
		assert.True(t, u.NotificationPreferences.Email)
		assert.NotEqual(t, "s3cure-secret", u.PasswordHash)
		assert.True(t, u.CheckPassword("s3cure-secret"))
	})

	t.Run("department is optional", func(t *testing.T) {
		params := validParams()
		params.Department = "   "
		u, err := NewUser(params, now)
		require.NoError(t, err)
		assert.Empty(t, u.Department)
	})

	t.Run("collects every validation problem", func(t *testing.T) {
		_, err := NewUser(NewUserParams{Email: "nope", Password: "short", Role: "Janitor"}, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		msg := dErrors.MessageOf(err)
		assert.Contains(t, msg, "Name is required")
		assert.Contains(t, msg, "valid email")
		assert.Contains(t, msg, "Invalid role")
		assert.Contains(t, msg, "at least 8")
	})
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"long enough", "correcthorse", true},
		{"too short after trim", "  abc1234 ", false},
		{"contains password", "myPassWord123", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			}
		})
	}
}

func TestResetToken(t *testing.T) {
	now := time.Now()
	u, err := NewUser(validParams(), now)
	require.NoError(t, err)

	u.IssueResetToken("abc", now, time.Hour)
	assert.True(t, u.ResetTokenValid("abc", now.Add(59*time.Minute)))
	assert.False(t, u.ResetTokenValid("abc", now.Add(61*time.Minute)))
	assert.False(t, u.ResetTokenValid("other", now))
	assert.False(t, u.ResetTokenValid("", now))

	u.ClearResetToken(now)
	assert.False(t, u.ResetTokenValid("abc", now))
}

func TestSerializationHidesSecrets(t *testing.T) {
	u, err := NewUser(validParams(), time.Now())
	require.NoError(t, err)
	u.VerificationToken = "verify-me"
	u.IssueResetToken("reset-me", time.Now(), time.Hour)

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	body := string(raw)
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, u.PasswordHash)
	assert.NotContains(t, body, "verify-me")
	assert.NotContains(t, body, "reset-me")
}

func TestApplyProfile(t *testing.T) {
	u, err := NewUser(validParams(), time.Now())
	require.NoError(t, err)
	off := false
	phone := " 555 "

	require.NoError(t, u.ApplyProfile(ProfileUpdateRequest{
		Phone:                   &phone,
		NotificationPreferences: &NotificationPreferencesPatch{Email: &off},
	}))
	assert.Equal(t, "555", u.Phone)
	assert.False(t, u.NotificationPreferences.Email)

	empty := " "
	assert.Error(t, u.ApplyProfile(ProfileUpdateRequest{Name: &empty}))
}
