package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/identity-service/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "identity-service", cfg.App.Name)
	assert.Equal(t, 7, cfg.Auth.TokenLifetimeDays)
	assert.Equal(t, "identity-service", cfg.Auth.JWTIssuer)
	assert.Equal(t, 5, cfg.Auth.LockoutMaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Auth.LockoutDuration())
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutWindow())
}

func TestLoadRejectsNonPositiveLifetime(t *testing.T) {
	t.Setenv("AUTH_TOKEN_LIFETIME_DAYS", "0")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_TOKEN_LIFETIME_DAYS")
}

func TestLoadRejectsNonPositiveLockoutThreshold(t *testing.T) {
	t.Setenv("AUTH_LOCKOUT_MAX_ATTEMPTS", "-1")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_LOCKOUT_MAX_ATTEMPTS")
}
