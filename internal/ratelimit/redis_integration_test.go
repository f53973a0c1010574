//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"frontdesk/internal/ratelimit"
	"frontdesk/pkg/testutil/containers"
)

type RedisLimiterSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisLimiterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLimiterSuite))
}

func (s *RedisLimiterSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisLimiterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLimiterSuite) TestBucketDrainsThenRefuses() {
	ctx := context.Background()
	limiter := ratelimit.NewRedis(s.redis.Client, 3, time.Minute)

	for i := range 3 {
		res, err := limiter.Allow(ctx, "auth:ip:192.0.2.1")
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(2-i, res.Remaining)
		s.Equal(3, res.Limit)
	}

	res, err := limiter.Allow(ctx, "auth:ip:192.0.2.1")
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Greater(res.RetryAfter, 50*time.Second)

	other, err := limiter.Allow(ctx, "auth:ip:192.0.2.2")
	s.Require().NoError(err)
	s.True(other.Allowed, "buckets are per key")
}

func (s *RedisLimiterSuite) TestBucketRefills() {
	ctx := context.Background()
	limiter := ratelimit.NewRedis(s.redis.Client, 1, 200*time.Millisecond)

	res, err := limiter.Allow(ctx, "refill")
	s.Require().NoError(err)
	s.True(res.Allowed)
	res, err = limiter.Allow(ctx, "refill")
	s.Require().NoError(err)
	s.False(res.Allowed)

	s.Eventually(func() bool {
		res, err := limiter.Allow(ctx, "refill")
		return err == nil && res.Allowed
	}, 2*time.Second, 50*time.Millisecond)
}
