package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 23, cfg.SweepHour)
	assert.Equal(t, 10, cfg.EchoPageSize)
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("ECHO_HTTP_PORT", "9090")
	t.Setenv("ECHO_ENVIRONMENT", "production")
	t.Setenv("ECHO_SWEEP_HOUR", "2")
	t.Setenv("ECHO_TIMEZONE", "America/New_York")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2, cfg.SweepHour)
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestResolveDefaultsRejectsBadValues(t *testing.T) {
	cfg := NewForTesting()
	cfg.SweepHour = 24
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.EchoPageSize = 0
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.ResolveDefaults())
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.ResolveDefaults())
}
