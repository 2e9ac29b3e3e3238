package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrasreport/internal/shared/testutil"
)

func TestHealthService(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	hs := NewHealthServiceWithBuildInfo("1.2.3", "2024-03-01", "abc123", func() int { return 2 }, nil, logger)
	ctx := context.Background()

	assert.True(t, logs.ContainsMessage("HealthService initialized"))

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	ready := hs.ReadinessCheck(ctx)
	assert.Equal(t, "ready", ready.Status)
	require.Contains(t, ready.Services, "sessions")

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, "1.2.3", version["version"])
	assert.Equal(t, "abc123", version["build_id"])
}

func TestHealthService_NotReadyWithoutSessions(t *testing.T) {
	hs := NewHealthService("1.0.0", nil, nil, nil)

	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", ready.Status)
}
