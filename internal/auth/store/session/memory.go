package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"frontdesk/internal/auth/models"
	"frontdesk/pkg/platform/sentinel"
)

// InMemory is a process-local session store.
type InMemory struct {
	mu     sync.RWMutex
	byHash map[string]*models.Session
	byUser map[uuid.UUID]map[string]struct{}
	now    func() time.Time
}

type InMemoryOption func(*InMemory)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemory) {
		s.now = now
	}
}

func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		byHash: make(map[string]*models.Session),
		byUser: make(map[uuid.UUID]map[string]struct{}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) Add(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.byHash[session.TokenHash] = &c
	hashes, ok := s.byUser[session.UserID]
	if !ok {
		hashes = make(map[string]struct{})
		s.byUser[session.UserID] = hashes
	}
	hashes[session.TokenHash] = struct{}{}
	return nil
}

func (s *InMemory) Find(_ context.Context, tokenHash string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byHash[tokenHash]
	if !ok || session.Expired(s.now()) {
		return nil, sentinel.ErrNotFound
	}
	c := *session
	return &c, nil
}

func (s *InMemory) Contains(ctx context.Context, userID uuid.UUID, tokenHash string, kind models.SessionKind) (bool, error) {
	session, err := s.Find(ctx, tokenHash)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return session.Matches(userID, kind), nil
}

// Remove is idempotent.
func (s *InMemory) Remove(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byHash[tokenHash]
	if !ok {
		return nil
	}
	delete(s.byHash, tokenHash)
	if hashes, ok := s.byUser[session.UserID]; ok {
		delete(hashes, tokenHash)
		if len(hashes) == 0 {
			delete(s.byUser, session.UserID)
		}
	}
	return nil
}

func (s *InMemory) RemoveAllForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash := range s.byUser[userID] {
		delete(s.byHash, hash)
	}
	delete(s.byUser, userID)
	return nil
}

// ListForUser returns the user's unexpired sessions.
func (s *InMemory) ListForUser(_ context.Context, userID uuid.UUID) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	var sessions []*models.Session
	for hash := range s.byUser[userID] {
		session := s.byHash[hash]
		if session == nil || session.Expired(now) {
			continue
		}
		c := *session
		sessions = append(sessions, &c)
	}
	return sessions, nil
}
