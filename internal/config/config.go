package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"pqgate/internal/constants"
	"pqgate/internal/models"
	"pqgate/internal/security"
)

var (
	ErrMissingDBPath      = models.ConfigError{Message: "missing database path"}
	ErrUnknownProvider    = models.ConfigError{Message: "crypto provider must be \"real\" or \"simulated\""}
	ErrMissingKEMAlg      = models.ConfigError{Message: "missing KEM algorithm"}
	ErrMissingSIGAlg      = models.ConfigError{Message: "missing signature algorithm"}
	ErrInvalidMemoryLimit = models.ConfigError{Message: "maxMemoryMB must be positive"}
	ErrInvalidCPULimit    = models.ConfigError{Message: "maxCPUPercent must be in (0, 100]"}
)

// LoadConfig reads the JSON configuration file, fills in defaults, applies
// PQGATE_* environment overrides, and validates the result.
func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - path validated above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&config)
	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns a runnable configuration without reading any file.
// The demo binary and tests start from this.
func DefaultConfig() *models.Config {
	config := &models.Config{}
	applyDefaults(config)
	return config
}

func applyDefaults(c *models.Config) {
	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if c.Server.HistoryLimit <= 0 {
		c.Server.HistoryLimit = constants.DefaultHistoryLimit
	}

	if c.Crypto.Provider == "" {
		c.Crypto.Provider = constants.ProviderSimulated
	}
	if c.Crypto.KEMAlgorithm == "" {
		c.Crypto.KEMAlgorithm = constants.DefaultKEMAlgorithm
	}
	if c.Crypto.SIGAlgorithm == "" {
		c.Crypto.SIGAlgorithm = constants.DefaultSIGAlgorithm
	}

	if c.Budget.MaxMemoryMB <= 0 {
		c.Budget.MaxMemoryMB = constants.DefaultMaxMemoryMB
	}
	if c.Budget.MaxCPUPercent <= 0 {
		c.Budget.MaxCPUPercent = constants.DefaultMaxCPUPercent
	}
	if c.Budget.CPUSampleMs <= 0 {
		c.Budget.CPUSampleMs = constants.DefaultCPUSampleMs
	}

	if c.Database.Path == "" {
		c.Database.Path = constants.DefaultDatabasePath
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "pqgate"
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = "dev"
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = "development"
	}
	if c.Tracing.OTLPEndpoint == "" {
		c.Tracing.OTLPEndpoint = "http://localhost:4318/v1/traces"
	}
	if c.Tracing.SampleRate <= 0 {
		c.Tracing.SampleRate = 0.1
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func applyEnvironmentOverrides(c *models.Config) {
	if provider := os.Getenv("PQGATE_CRYPTO_PROVIDER"); provider != "" {
		c.Crypto.Provider = provider
	}
	if path := os.Getenv("PQGATE_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if port := os.Getenv("PQGATE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if level := os.Getenv("PQGATE_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if mem := os.Getenv("PQGATE_MAX_MEMORY_MB"); mem != "" {
		if m, err := strconv.Atoi(mem); err == nil && m > 0 {
			c.Budget.MaxMemoryMB = m
		}
	}
	if cpu := os.Getenv("PQGATE_MAX_CPU_PERCENT"); cpu != "" {
		if v, err := strconv.ParseFloat(cpu, 64); err == nil && v > 0 {
			c.Budget.MaxCPUPercent = v
		}
	}
}

func validate(c *models.Config) error {
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}
	if c.Crypto.Provider != constants.ProviderReal && c.Crypto.Provider != constants.ProviderSimulated {
		return ErrUnknownProvider
	}
	if c.Crypto.KEMAlgorithm == "" {
		return ErrMissingKEMAlg
	}
	if c.Crypto.SIGAlgorithm == "" {
		return ErrMissingSIGAlg
	}
	if c.Budget.MaxMemoryMB <= 0 {
		return ErrInvalidMemoryLimit
	}
	if c.Budget.MaxCPUPercent <= 0 || c.Budget.MaxCPUPercent > 100 {
		return ErrInvalidCPULimit
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return models.ConfigError{Message: fmt.Sprintf("invalid port: %d", c.Server.Port)}
	}
	return nil
}
