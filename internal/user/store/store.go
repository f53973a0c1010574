// Package store persists users. The in-memory and Postgres implementations
// share the same contract; NewEncrypted wraps either to protect PII columns.
package store

import (
	"context"

	"github.com/google/uuid"

	"frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
)

// Store is the persistence contract for users. Lookups return
// sentinel.ErrNotFound; writes that collide on email return a
// sentinel.ConflictError for "email".
type Store interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*models.User, error)
	ListByDepartment(ctx context.Context, department string) ([]*models.User, error)
}
