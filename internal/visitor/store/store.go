// Package store persists visitors. NewEncrypted wraps any Store so name,
// email and phone never reach the backing store in clear.
package store

import (
	"context"

	"github.com/google/uuid"

	"frontdesk/internal/visitor/models"
)

// Store returns sentinel.ErrNotFound for unknown IDs.
type Store interface {
	Create(ctx context.Context, v *models.Visitor) error
	Update(ctx context.Context, v *models.Visitor) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	List(ctx context.Context) ([]*models.Visitor, error)
}
