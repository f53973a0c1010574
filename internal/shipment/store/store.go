// Package store persists shipments.
package store

import (
	"context"

	"github.com/google/uuid"

	"frontdesk/internal/shipment/models"
)

// Store returns sentinel.ErrNotFound for unknown IDs and a conflict on
// "trackingNumber" when the tracking number is taken.
type Store interface {
	Create(ctx context.Context, s *models.Shipment) error
	Update(ctx context.Context, s *models.Shipment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	List(ctx context.Context) ([]*models.Shipment, error)
	ListByRecipient(ctx context.Context, recipient uuid.UUID) ([]*models.Shipment, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Shipment, error)
}
