package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"frontdesk/internal/auth/models"
	"frontdesk/pkg/platform/sentinel"
)

type InMemorySessionStoreSuite struct {
	suite.Suite
	store *InMemory
	now   time.Time
}

func TestInMemorySessionStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemorySessionStoreSuite))
}

func (s *InMemorySessionStoreSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.store = NewInMemory(WithClock(func() time.Time { return s.now }))
}

func (s *InMemorySessionStoreSuite) add(token string, userID uuid.UUID, kind models.SessionKind, ttl time.Duration) *models.Session {
	session := models.NewSession(token, kind, userID, "Chrome on Linux", "10.0.0.1", s.now, s.now.Add(ttl))
	s.Require().NoError(s.store.Add(context.Background(), session))
	return session
}

func (s *InMemorySessionStoreSuite) TestAddAndContains() {
	ctx := context.Background()
	userID := uuid.New()
	session := s.add("token-a", userID, models.SessionAccess, time.Hour)

	ok, err := s.store.Contains(ctx, userID, session.TokenHash, models.SessionAccess)
	s.Require().NoError(err)
	s.True(ok)

	s.Run("wrong kind is not contained", func() {
		ok, err := s.store.Contains(ctx, userID, session.TokenHash, models.SessionRefresh)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("other user's token is not contained", func() {
		ok, err := s.store.Contains(ctx, uuid.New(), session.TokenHash, models.SessionAccess)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("raw token is never the key", func() {
		_, err := s.store.Find(ctx, "token-a")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemorySessionStoreSuite) TestRemoveIsScopedAndIdempotent() {
	ctx := context.Background()
	userID := uuid.New()
	first := s.add("token-a", userID, models.SessionAccess, time.Hour)
	second := s.add("token-b", userID, models.SessionAccess, time.Hour)

	s.Require().NoError(s.store.Remove(ctx, first.TokenHash))
	s.Require().NoError(s.store.Remove(ctx, first.TokenHash))

	ok, _ := s.store.Contains(ctx, userID, first.TokenHash, models.SessionAccess)
	s.False(ok)
	ok, _ = s.store.Contains(ctx, userID, second.TokenHash, models.SessionAccess)
	s.True(ok)
}

func (s *InMemorySessionStoreSuite) TestRemoveAllForUser() {
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	s.add("a1", alice, models.SessionAccess, time.Hour)
	s.add("a2", alice, models.SessionRefresh, 7*24*time.Hour)
	bobs := s.add("b1", bob, models.SessionAccess, time.Hour)

	s.Require().NoError(s.store.RemoveAllForUser(ctx, alice))

	list, err := s.store.ListForUser(ctx, alice)
	s.Require().NoError(err)
	s.Empty(list)

	ok, _ := s.store.Contains(ctx, bob, bobs.TokenHash, models.SessionAccess)
	s.True(ok)
}

func (s *InMemorySessionStoreSuite) TestExpiredSessionsAreInvisible() {
	ctx := context.Background()
	userID := uuid.New()
	short := s.add("short", userID, models.SessionAccess, time.Minute)
	s.add("long", userID, models.SessionRefresh, time.Hour)

	s.now = s.now.Add(2 * time.Minute)

	_, err := s.store.Find(ctx, short.TokenHash)
	s.ErrorIs(err, sentinel.ErrNotFound)

	list, err := s.store.ListForUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(models.SessionRefresh, list[0].Kind)
}
