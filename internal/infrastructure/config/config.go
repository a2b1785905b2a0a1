package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings, populated from PAYMENT_* environment
// variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBPath   string `envconfig:"DB_PATH" default:"./data"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// Simulated provider behaviour
	GatewayLatency         time.Duration `envconfig:"GATEWAY_LATENCY" default:"500ms"`
	GatewaySuccessRate     float64       `envconfig:"GATEWAY_SUCCESS_RATE" default:"0.9"`
	GatewayUnavailableRate float64       `envconfig:"GATEWAY_UNAVAILABLE_RATE" default:"0"`

	// Retry policy for gateway unavailability. On exhaustion the
	// transaction is left PENDING for reconciliation.
	GatewayMaxAttempts  int           `envconfig:"GATEWAY_MAX_ATTEMPTS" default:"3"`
	GatewayRetryBackoff time.Duration `envconfig:"GATEWAY_RETRY_BACKOFF" default:"1s"`

	ReplayCacheTTL time.Duration `envconfig:"REPLAY_CACHE_TTL" default:"24h"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("payment", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.GatewaySuccessRate < 0 || cfg.GatewaySuccessRate > 1 {
		return nil, fmt.Errorf("gateway success rate must be between 0 and 1, got %f", cfg.GatewaySuccessRate)
	}

	if cfg.GatewayUnavailableRate < 0 || cfg.GatewayUnavailableRate > 1 {
		return nil, fmt.Errorf("gateway unavailable rate must be between 0 and 1, got %f", cfg.GatewayUnavailableRate)
	}

	return &cfg, nil
}
