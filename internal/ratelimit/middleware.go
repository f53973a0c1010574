package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"frontdesk/internal/ratelimit/metrics"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/platform/httputil"
	"frontdesk/pkg/requestcontext"
)

type Middleware struct {
	limiter Limiter
	logger  *slog.Logger
	metrics *metrics.Metrics
	scope   string
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

// WithScope namespaces the bucket keys, e.g. "auth".
func WithScope(scope string) Option {
	return func(mw *Middleware) {
		mw.scope = scope
	}
}

func New(limiter Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{limiter: limiter, logger: logger, scope: "auth"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PerIP keys the bucket by client IP. Limiter failures let the request
// through.
func (m *Middleware) PerIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		if ip == "" {
			ip = "unknown"
		}

		result, err := m.limiter.Allow(ctx, m.scope+":ip:"+ip)
		if err != nil {
			m.logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			m.observe("error")
			next.ServeHTTP(w, r)
			return
		}

		if result.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		}
		if !result.Allowed {
			m.observe("limited")
			m.logger.InfoContext(ctx, "rate limit exceeded",
				"client_ip", ip,
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(ctx),
			)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "Too many requests, please try again later"))
			return
		}
		m.observe("allowed")
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) observe(outcome string) {
	if m.metrics != nil {
		m.metrics.IncDecision(m.scope, outcome)
	}
}
