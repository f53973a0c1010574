package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
	"frontdesk/pkg/platform/sentinel"
)

// InMemory is a map-backed Store. Records are cloned on the way in and out.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[user.Email]; taken {
		return sentinel.Conflict("email")
	}
	s.byID[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.byEmail[user.Email]; taken && owner != user.ID {
		return sentinel.Conflict("email")
	}
	delete(s.byEmail, existing.Email)
	s.byID[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, existing.Email)
	delete(s.byID, id)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *InMemory) FindByVerificationToken(_ context.Context, token string) (*models.User, error) {
	return s.findOne(func(u *models.User) bool {
		return token != "" && u.VerificationToken == token
	})
}

func (s *InMemory) FindByResetToken(_ context.Context, token string) (*models.User, error) {
	return s.findOne(func(u *models.User) bool {
		return token != "" && u.ResetPasswordToken == token
	})
}

func (s *InMemory) List(_ context.Context) ([]*models.User, error) {
	return s.filter(func(*models.User) bool { return true }), nil
}

func (s *InMemory) ListByRole(_ context.Context, role domain.Role) ([]*models.User, error) {
	return s.filter(func(u *models.User) bool { return u.Role == role }), nil
}

func (s *InMemory) ListByDepartment(_ context.Context, department string) ([]*models.User, error) {
	return s.filter(func(u *models.User) bool { return u.Department == department }), nil
}

func (s *InMemory) findOne(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if match(u) {
			return u.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) filter(match func(*models.User) bool) []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.byID))
	for _, u := range s.byID {
		if match(u) {
			out = append(out, u.Clone())
		}
	}
	return out
}
