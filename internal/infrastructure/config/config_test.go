package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data", cfg.DBPath)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.GatewayLatency)
	assert.Equal(t, 0.9, cfg.GatewaySuccessRate)
	assert.Equal(t, 3, cfg.GatewayMaxAttempts)
	assert.Equal(t, 24*time.Hour, cfg.ReplayCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PAYMENT_PORT", "9090")
	t.Setenv("PAYMENT_GATEWAY_LATENCY", "10ms")
	t.Setenv("PAYMENT_GATEWAY_SUCCESS_RATE", "0.5")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 10*time.Millisecond, cfg.GatewayLatency)
	assert.Equal(t, 0.5, cfg.GatewaySuccessRate)
}

func TestLoadRejectsBadRates(t *testing.T) {
	t.Setenv("PAYMENT_GATEWAY_SUCCESS_RATE", "1.5")

	_, err := Load()
	assert.Error(t, err)
}
