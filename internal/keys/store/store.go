// Package store persists keys and serializes custody changes per key.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"frontdesk/internal/keys/models"
)

// Mutation edits a key in place. Returning an error discards the change.
type Mutation func(k *models.Key) error

// Store returns sentinel.ErrNotFound for unknown IDs and a conflict on
// "keyNumber" when the number is taken.
//
// Execute and DeleteIf hold the key exclusively while fn or guard runs, so two
// callers can never both observe the key as available.
type Store interface {
	Create(ctx context.Context, k *models.Key) error
	Update(ctx context.Context, k *models.Key) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Key, error)
	List(ctx context.Context) ([]*models.Key, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Key, error)
	ListByAssignee(ctx context.Context, assignee uuid.UUID) ([]*models.Key, error)
	ListByAccessLevel(ctx context.Context, level models.AccessLevel) ([]*models.Key, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Key, error)
	Execute(ctx context.Context, id uuid.UUID, fn Mutation) (*models.Key, error)
	DeleteIf(ctx context.Context, id uuid.UUID, guard func(k *models.Key) error) error
}
