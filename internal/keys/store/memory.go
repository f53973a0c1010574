package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"frontdesk/internal/keys/models"
	"frontdesk/pkg/platform/sentinel"
)

const numberField = "keyNumber"

type InMemory struct {
	mu       sync.RWMutex
	keys     map[uuid.UUID]*models.Key
	byNumber map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		keys:     make(map[uuid.UUID]*models.Key),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, k *models.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byNumber[k.KeyNumber]; taken {
		return sentinel.Conflict(numberField)
	}
	s.keys[k.ID] = k.Clone()
	s.byNumber[k.KeyNumber] = k.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, k *models.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(k)
}

// put requires s.mu held for writing.
func (s *InMemory) put(k *models.Key) error {
	existing, ok := s.keys[k.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.byNumber[k.KeyNumber]; taken && owner != k.ID {
		return sentinel.Conflict(numberField)
	}
	delete(s.byNumber, existing.KeyNumber)
	s.keys[k.ID] = k.Clone()
	s.byNumber[k.KeyNumber] = k.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return k.Clone(), nil
}

func (s *InMemory) Execute(_ context.Context, id uuid.UUID, fn Mutation) (*models.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.keys[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	k := current.Clone()
	if err := fn(k); err != nil {
		return nil, err
	}
	if err := s.put(k); err != nil {
		return nil, err
	}
	return k, nil
}

func (s *InMemory) DeleteIf(_ context.Context, id uuid.UUID, guard func(*models.Key) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if err := guard(k.Clone()); err != nil {
		return err
	}
	delete(s.byNumber, k.KeyNumber)
	delete(s.keys, id)
	return nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Key, error) {
	return s.filter(func(*models.Key) bool { return true }), nil
}

func (s *InMemory) ListByStatus(_ context.Context, status models.Status) ([]*models.Key, error) {
	return s.filter(func(k *models.Key) bool { return k.Status == status }), nil
}

func (s *InMemory) ListByAssignee(_ context.Context, assignee uuid.UUID) ([]*models.Key, error) {
	return s.filter(func(k *models.Key) bool { return k.AssignedTo != nil && *k.AssignedTo == assignee }), nil
}

func (s *InMemory) ListByAccessLevel(_ context.Context, level models.AccessLevel) ([]*models.Key, error) {
	return s.filter(func(k *models.Key) bool { return k.AccessLevel == level }), nil
}

func (s *InMemory) ListOverdue(_ context.Context, now time.Time) ([]*models.Key, error) {
	return s.filter(func(k *models.Key) bool { return k.IsOverdue(now) }), nil
}

func (s *InMemory) filter(match func(*models.Key) bool) []*models.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Key, 0, len(s.keys))
	for _, k := range s.keys {
		if match(k) {
			out = append(out, k.Clone())
		}
	}
	return out
}
