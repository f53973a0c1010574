package notification

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"frontdesk/internal/platform/mailer"
	usermodels "frontdesk/internal/user/models"
)

// Channel delivers a rendered notification to one user.
type Channel interface {
	Name() string
	// Enabled reports whether the user opted in and has an address here.
	Enabled(user *usermodels.User) bool
	Send(ctx context.Context, user *usermodels.User, subject, message string) error
}

// EmailChannel sends through a Mailer.
type EmailChannel struct {
	mailer mailer.Mailer
}

func NewEmailChannel(m mailer.Mailer) *EmailChannel {
	return &EmailChannel{mailer: m}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Enabled(user *usermodels.User) bool {
	return user.NotificationPreferences.Email && user.Email != ""
}

func (c *EmailChannel) Send(ctx context.Context, user *usermodels.User, subject, message string) error {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>%s</h2>
  <p>Hello %s,</p>
  <p>%s</p>
  <p>Best regards,<br>The Frontdesk Team</p>
</div>`, html.EscapeString(subject), html.EscapeString(user.Name), html.EscapeString(message))

	return c.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: subject,
		Text:    message,
		HTML:    body,
	})
}

// LogChannel stands in for a provider that is not integrated. It records the
// intent to send and never fails.
type LogChannel struct {
	name    string
	enabled func(*usermodels.User) bool
	address func(*usermodels.User) string
	logger  *slog.Logger
}

func NewSMSChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{
		name:    "sms",
		enabled: func(u *usermodels.User) bool { return u.NotificationPreferences.SMS && u.Phone != "" },
		address: func(u *usermodels.User) string { return u.Phone },
		logger:  logger,
	}
}

func NewSlackChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{
		name:    "slack",
		enabled: func(u *usermodels.User) bool { return u.NotificationPreferences.Slack && u.SlackUserID != "" },
		address: func(u *usermodels.User) string { return u.SlackUserID },
		logger:  logger,
	}
}

func NewTeamsChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{
		name:    "teams",
		enabled: func(u *usermodels.User) bool { return u.NotificationPreferences.Teams && u.TeamsUserID != "" },
		address: func(u *usermodels.User) string { return u.TeamsUserID },
		logger:  logger,
	}
}

func (c *LogChannel) Name() string { return c.name }

func (c *LogChannel) Enabled(user *usermodels.User) bool { return c.enabled(user) }

func (c *LogChannel) Send(ctx context.Context, user *usermodels.User, subject, message string) error {
	c.logger.InfoContext(ctx, "notification channel not integrated, logging only",
		"channel", c.name,
		"user_id", user.ID,
		"address", c.address(user),
		"subject", subject,
	)
	return nil
}
