package models

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Crypto   CryptoConfig   `json:"crypto"`
	Budget   BudgetConfig   `json:"budget"`
	Database DatabaseConfig `json:"database"`
	Tracing  TracingConfig  `json:"tracing"`
	LogLevel string         `json:"log_level"`
}

// ServerConfig holds HTTP server related configuration
type ServerConfig struct {
	Port            int `json:"port"`
	ReadTimeoutSec  int `json:"readTimeoutSec"`
	WriteTimeoutSec int `json:"writeTimeoutSec"`
	IdleTimeoutSec  int `json:"idleTimeoutSec"`
	HistoryLimit    int `json:"historyLimit"`
}

// CryptoConfig selects the backend variant and algorithms. Provider is either
// "real" or "simulated" and is evaluated exactly once, at startup.
type CryptoConfig struct {
	Provider     string `json:"provider"`
	KEMAlgorithm string `json:"kem_algorithm"`
	SIGAlgorithm string `json:"sig_algorithm"`
}

// BudgetConfig holds the advisory resource ceilings used to simulate
// constrained-device conditions.
type BudgetConfig struct {
	MaxMemoryMB   int     `json:"maxMemoryMB"`
	MaxCPUPercent float64 `json:"maxCPUPercent"`
	// CPUSampleMs is the sampling window for CPU utilization readings.
	CPUSampleMs int `json:"cpuSampleMs"`
}

// DatabaseConfig holds history store related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// TracingConfig holds OpenTelemetry related configuration
type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseStdout      bool    `json:"use_stdout"`
}

// ConfigError represents a configuration validation failure
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return "config error: " + e.Message
}
