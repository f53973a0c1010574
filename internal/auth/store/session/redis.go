package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"frontdesk/internal/auth/models"
	"frontdesk/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// RedisStore keeps each session under its own key with a TTL equal to the
// token lifetime, plus a per-user set of token hashes for logout-all and
// listing. Set members whose session key has expired are pruned lazily.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func sessionKey(hash string) string {
	return sessionKeyPrefix + hash
}

func userKey(userID uuid.UUID) string {
	return userSessionKeyPrefix + userID.String()
}

func (s *RedisStore) Add(ctx context.Context, session *models.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired: %w", sentinel.ErrInvalidState)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.TokenHash), payload, ttl)
		pipe.SAdd(ctx, userKey(session.UserID), session.TokenHash)
		// The index lives as long as the longest session in it.
		pipe.ExpireNX(ctx, userKey(session.UserID), ttl)
		pipe.ExpireGT(ctx, userKey(session.UserID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, tokenHash string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Contains(ctx context.Context, userID uuid.UUID, tokenHash string, kind models.SessionKind) (bool, error) {
	session, err := s.Find(ctx, tokenHash)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return session.Matches(userID, kind), nil
}

func (s *RedisStore) Remove(ctx context.Context, tokenHash string) error {
	session, err := s.Find(ctx, tokenHash)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(tokenHash))
		pipe.SRem(ctx, userKey(session.UserID), tokenHash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveAllForUser(ctx context.Context, userID uuid.UUID) error {
	hashes, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, sessionKey(h))
	}
	keys = append(keys, userKey(userID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("remove user sessions: %w", err)
	}
	return nil
}

func (s *RedisStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	hashes, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	if len(hashes) == 0 {
		return nil, nil
	}

	keys := make([]string, len(hashes))
	for i, h := range hashes {
		keys[i] = sessionKey(h)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load user sessions: %w", err)
	}

	var (
		sessions []*models.Session
		stale    []any
	)
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, hashes[i])
			continue
		}
		var session models.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		sessions = append(sessions, &session)
	}
	if len(stale) > 0 {
		_ = s.client.SRem(ctx, userKey(userID), stale...).Err()
	}
	return sessions, nil
}
