// Package session stores issued bearer tokens by hash. A token authenticates
// only while its session exists: logout removes one, logout-all removes every
// session of the user.
package session

import (
	"context"

	"github.com/google/uuid"

	"frontdesk/internal/auth/models"
)

// Store is implemented by InMemory and RedisStore. Find returns
// sentinel.ErrNotFound for unknown or expired sessions.
type Store interface {
	Add(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, tokenHash string) (*models.Session, error)
	Contains(ctx context.Context, userID uuid.UUID, tokenHash string, kind models.SessionKind) (bool, error)
	Remove(ctx context.Context, tokenHash string) error
	RemoveAllForUser(ctx context.Context, userID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error)
}
