package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/internal/platform/config"
)

func memoryConfig() config.Config {
	return config.Config{
		Server:        config.Server{Environment: config.EnvDevelopment, Version: "test"},
		Auth:          config.Auth{JWTSecret: "a", JWTRefreshSecret: "b", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour, Issuer: "frontdesk"},
		EncryptionKey: "secret",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewInMemory(t *testing.T) {
	s, err := New(context.Background(), memoryConfig(), quietLogger(), WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	defer s.Close()

	assert.NotNil(t, s.Handler)
	assert.Nil(t, s.auditWorker, "no kafka, no worker")
	assert.Empty(t, s.closers)
	s.SweepOverdue(context.Background())
}

func TestNewRejectsMissingEncryptionKey(t *testing.T) {
	cfg := memoryConfig()
	cfg.EncryptionKey = ""
	_, err := New(context.Background(), cfg, quietLogger(), WithRegistry(prometheus.NewRegistry()))
	assert.ErrorContains(t, err, "field encryption")
}

func TestRunBackgroundStopsOnCancel(t *testing.T) {
	s, err := New(context.Background(), memoryConfig(), quietLogger(), WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunBackground(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("background jobs did not stop")
	}
}
