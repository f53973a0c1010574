package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"frontdesk/internal/visitor/models"
	"frontdesk/pkg/platform/sentinel"
)

type InMemory struct {
	mu       sync.RWMutex
	visitors map[uuid.UUID]*models.Visitor
}

func NewInMemory() *InMemory {
	return &InMemory{visitors: make(map[uuid.UUID]*models.Visitor)}
}

func (s *InMemory) Create(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitors[v.ID] = v.Clone()
	return nil
}

func (s *InMemory) Update(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visitors[v.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.visitors[v.ID] = v.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visitors[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.visitors, id)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visitors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return v.Clone(), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Visitor, 0, len(s.visitors))
	for _, v := range s.visitors {
		out = append(out, v.Clone())
	}
	return out, nil
}
