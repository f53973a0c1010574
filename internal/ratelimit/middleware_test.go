package ratelimit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"frontdesk/internal/ratelimit"
	"frontdesk/internal/ratelimit/metrics"
	"frontdesk/internal/ratelimit/mocks"
	"frontdesk/pkg/requestcontext"
	"frontdesk/pkg/testutil"
)

//go:generate mockgen -source=ratelimit.go -destination=mocks/mocks.go -package=mocks Limiter

func newServer(t *testing.T) (*mocks.MockLimiter, *metrics.Metrics, http.Handler) {
	ctrl := gomock.NewController(t)
	limiter := mocks.NewMockLimiter(ctrl)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	mw := ratelimit.New(limiter, slog.New(slog.NewTextHandler(io.Discard, nil)), ratelimit.WithMetrics(m))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return limiter, m, mw.PerIP(ok)
}

func loginRequest(t *testing.T, ip string) *http.Request {
	req := testutil.NewRequest(t, http.MethodPost, "/api/auth/login")
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "curl/8"))
}

func TestPerIP(t *testing.T) {
	t.Run("allowed request carries quota headers", func(t *testing.T) {
		limiter, m, h := newServer(t)
		limiter.EXPECT().Allow(gomock.Any(), "auth:ip:10.1.2.3").
			Return(&ratelimit.Result{Allowed: true, Limit: 10, Remaining: 9, ResetAt: time.Unix(1700000000, 0)}, nil)

		rr := testutil.DoRequest(h, loginRequest(t, "10.1.2.3"))

		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, "10", rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", rr.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "1700000000", rr.Header().Get("X-RateLimit-Reset"))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.Decisions.WithLabelValues("auth", "allowed")))
	})

	t.Run("exhausted bucket - 429", func(t *testing.T) {
		limiter, m, h := newServer(t)
		limiter.EXPECT().Allow(gomock.Any(), gomock.Any()).
			Return(&ratelimit.Result{Allowed: false, Limit: 10, RetryAfter: 5500 * time.Millisecond}, nil)

		rr := testutil.DoRequest(h, loginRequest(t, "10.1.2.3"))

		testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "too_many_requests")
		assert.Equal(t, "6", rr.Header().Get("Retry-After"))
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.Decisions.WithLabelValues("auth", "limited")))
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		limiter, m, h := newServer(t)
		limiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		rr := testutil.DoRequest(h, loginRequest(t, "10.1.2.3"))

		testutil.AssertStatusOK(t, rr)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.Decisions.WithLabelValues("auth", "error")))
	})
}

func TestNoopAdmitsEverything(t *testing.T) {
	for range 100 {
		res, err := ratelimit.Noop{}.Allow(context.Background(), "k")
		assert.NoError(t, err)
		assert.True(t, res.Allowed)
	}
}
