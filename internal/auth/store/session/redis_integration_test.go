//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"frontdesk/internal/auth/models"
	"frontdesk/internal/auth/store/session"
	"frontdesk/pkg/platform/sentinel"
	"frontdesk/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = session.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) add(token string, userID uuid.UUID, kind models.SessionKind, ttl time.Duration) *models.Session {
	now := time.Now()
	sess := models.NewSession(token, kind, userID, "Firefox on Linux", "10.0.0.7", now, now.Add(ttl))
	s.Require().NoError(s.store.Add(context.Background(), sess))
	return sess
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	userID := uuid.New()
	sess := s.add("token-1", userID, models.SessionAccess, time.Hour)

	found, err := s.store.Find(ctx, sess.TokenHash)
	s.Require().NoError(err)
	s.Equal(userID, found.UserID)
	s.Equal("Firefox on Linux", found.Device)

	ok, err := s.store.Contains(ctx, userID, sess.TokenHash, models.SessionAccess)
	s.Require().NoError(err)
	s.True(ok)

	ttl, err := s.redis.Client.TTL(ctx, "session:"+sess.TokenHash).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 59*time.Minute)
}

func (s *RedisStoreSuite) TestLogoutRemovesOnlyThatToken() {
	ctx := context.Background()
	userID := uuid.New()
	a := s.add("token-a", userID, models.SessionAccess, time.Hour)
	b := s.add("token-b", userID, models.SessionAccess, time.Hour)

	s.Require().NoError(s.store.Remove(ctx, a.TokenHash))
	s.Require().NoError(s.store.Remove(ctx, a.TokenHash))

	_, err := s.store.Find(ctx, a.TokenHash)
	s.ErrorIs(err, sentinel.ErrNotFound)

	list, err := s.store.ListForUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(b.TokenHash, list[0].TokenHash)
}

func (s *RedisStoreSuite) TestRemoveAllForUser() {
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	s.add("a-access", alice, models.SessionAccess, time.Hour)
	s.add("a-refresh", alice, models.SessionRefresh, 24*time.Hour)
	bobs := s.add("b-access", bob, models.SessionAccess, time.Hour)

	s.Require().NoError(s.store.RemoveAllForUser(ctx, alice))

	list, err := s.store.ListForUser(ctx, alice)
	s.Require().NoError(err)
	s.Empty(list)

	ok, err := s.store.Contains(ctx, bob, bobs.TokenHash, models.SessionAccess)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisStoreSuite) TestExpiredMembersArePruned() {
	ctx := context.Background()
	userID := uuid.New()
	short := s.add("short", userID, models.SessionAccess, time.Second)
	s.add("long", userID, models.SessionRefresh, time.Hour)

	s.Eventually(func() bool {
		_, err := s.store.Find(ctx, short.TokenHash)
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)

	list, err := s.store.ListForUser(ctx, userID)
	s.Require().NoError(err)
	s.Len(list, 1)

	members, err := s.redis.Client.SMembers(ctx, "user_sessions:"+userID.String()).Result()
	s.Require().NoError(err)
	s.Len(members, 1)
}
