// Package health serves liveness and dependency status.
package health

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"frontdesk/pkg/platform/httputil"
	"frontdesk/pkg/requestcontext"
)

// Pinger reports whether a backing service answers. A nil Pinger means the
// service is not configured.
type Pinger func(ctx context.Context) error

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusInMemory     = "in-memory"
	StatusDisabled     = "disabled"
)

type Handler struct {
	version     string
	environment string
	startedAt   time.Time
	database    Pinger
	redis       Pinger
}

type Option func(*Handler)

func WithDatabase(p Pinger) Option {
	return func(h *Handler) {
		h.database = p
	}
}

func WithRedis(p Pinger) Option {
	return func(h *Handler) {
		h.redis = p
	}
}

func New(version, environment string, startedAt time.Time, opts ...Option) *Handler {
	h := &Handler{version: version, environment: environment, startedAt: startedAt}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterAPI mounts the detailed report under the API prefix.
func (h *Handler) RegisterAPI(r chi.Router) {
	r.Get("/health", h.handleReport)
}

// RegisterRoot mounts the plain liveness probe.
func (h *Handler) RegisterRoot(r chi.Router) {
	r.Get("/health", h.handleLiveness)
}

type dependency struct {
	Status string `json:"status"`
}

type memory struct {
	Alloc     string `json:"alloc"`
	Sys       string `json:"sys"`
	HeapInUse string `json:"heapInUse"`
}

type Report struct {
	Status      string     `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
	Uptime      float64    `json:"uptime"`
	Database    dependency `json:"database"`
	Redis       dependency `json:"redis"`
	Memory      memory     `json:"memory"`
	Environment string     `json:"environment"`
}

// handleReport always answers 200; a failing dependency shows in its status.
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := requestcontext.Now(ctx)

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	httputil.WriteJSON(w, http.StatusOK, Report{
		Status:      "ok",
		Timestamp:   now,
		Uptime:      now.Sub(h.startedAt).Seconds(),
		Database:    dependency{Status: probe(ctx, h.database, StatusInMemory)},
		Redis:       dependency{Status: probe(ctx, h.redis, StatusDisabled)},
		Memory:      memory{Alloc: megabytes(ms.Alloc), Sys: megabytes(ms.Sys), HeapInUse: megabytes(ms.HeapInuse)},
		Environment: h.environment,
	})
}

func (h *Handler) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"version":     h.version,
		"environment": h.environment,
	})
}

func probe(ctx context.Context, p Pinger, absent string) string {
	if p == nil {
		return absent
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p(ctx); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

func megabytes(b uint64) string {
	return fmt.Sprintf("%.2f MB", float64(b)/1024/1024)
}
