package constants

// Default server configuration values
const (
	DefaultServerPort            = 8080
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	DefaultHistoryLimit          = 10
	ServerErrorChannelSize       = 1
)

// Default resource budget values. The memory ceiling intentionally mimics a
// constrained device; real hosts will usually sit well under it.
const (
	DefaultMaxMemoryMB   = 512
	DefaultMaxCPUPercent = 80.0
	DefaultCPUSampleMs   = 100
)

// Default crypto configuration values
const (
	DefaultKEMAlgorithm = "MLKEM768"
	DefaultSIGAlgorithm = "Ed25519-Dilithium2"
	ProviderReal        = "real"
	ProviderSimulated   = "simulated"
)

// Database defaults
const (
	DefaultDatabasePath          = "pqgate.db"
	DefaultDatabaseRetryAttempts = 3
	DefaultBackoffInitialMs      = 500
	DefaultBackoffMaxMs          = 5000
)

// Input bounds enforced before any backend call
const (
	MaxMessageLength      = 64 * 1024
	MaxEncodedFieldLength = 128 * 1024
)

// Encryption salt for at-rest protection of stored key material
const (
	EncryptionSalt = "pqgate-salt-v1"
)

// Websocket live metrics feed
const (
	DefaultLiveSampleIntervalMs = 1000
)
