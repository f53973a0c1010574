package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"frontdesk/internal/shipment/models"
	"frontdesk/pkg/platform/sentinel"
)

const trackingField = "trackingNumber"

type InMemory struct {
	mu         sync.RWMutex
	shipments  map[uuid.UUID]*models.Shipment
	byTracking map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		shipments:  make(map[uuid.UUID]*models.Shipment),
		byTracking: make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, sh *models.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byTracking[sh.TrackingNumber]; taken {
		return sentinel.Conflict(trackingField)
	}
	s.shipments[sh.ID] = sh.Clone()
	s.byTracking[sh.TrackingNumber] = sh.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, sh *models.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.shipments[sh.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.byTracking[sh.TrackingNumber]; taken && owner != sh.ID {
		return sentinel.Conflict(trackingField)
	}
	delete(s.byTracking, existing.TrackingNumber)
	s.shipments[sh.ID] = sh.Clone()
	s.byTracking[sh.TrackingNumber] = sh.ID
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.shipments[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byTracking, existing.TrackingNumber)
	delete(s.shipments, id)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return sh.Clone(), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Shipment, error) {
	return s.filter(func(*models.Shipment) bool { return true }), nil
}

func (s *InMemory) ListByRecipient(_ context.Context, recipient uuid.UUID) ([]*models.Shipment, error) {
	return s.filter(func(sh *models.Shipment) bool { return sh.Recipient == recipient }), nil
}

func (s *InMemory) ListByStatus(_ context.Context, status models.Status) ([]*models.Shipment, error) {
	return s.filter(func(sh *models.Shipment) bool { return sh.Status == status }), nil
}

func (s *InMemory) filter(match func(*models.Shipment) bool) []*models.Shipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Shipment, 0, len(s.shipments))
	for _, sh := range s.shipments {
		if match(sh) {
			out = append(out, sh.Clone())
		}
	}
	return out
}
