package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
	"frontdesk/pkg/platform/sentinel"
)

// BootstrapAdmin describes the admin account ensured at startup.
type BootstrapAdmin struct {
	Name     string
	Email    string
	Password string
}

// SeedBootstrapAdmin creates an active, verified Admin when no user holds
// the e-mail yet. It reports whether a user was created.
func SeedBootstrapAdmin(ctx context.Context, s Store, admin BootstrapAdmin, now time.Time) (bool, error) {
	if admin.Email == "" || admin.Password == "" {
		return false, nil
	}
	email, err := models.NormalizeEmail(admin.Email)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin email: %w", err)
	}
	if _, err := s.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return false, fmt.Errorf("lookup bootstrap admin: %w", err)
	}

	u, err := models.NewUser(models.NewUserParams{
		Name:       admin.Name,
		Email:      email,
		Password:   admin.Password,
		Role:       domain.RoleAdmin,
		Department: "Administration",
	}, now)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	u.EmailVerified = true

	if err := s.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	return true, nil
}
