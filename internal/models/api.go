package models

// API request payloads. All key, ciphertext, secret, and signature fields are
// base64-encoded; messages travel as plain text.

type EncapsulateRequest struct {
	PublicKey string `json:"public_key"`
}

type DecapsulateRequest struct {
	PrivateKey string `json:"private_key"`
	Ciphertext string `json:"ciphertext"`
}

type SignRequest struct {
	PrivateKey string `json:"private_key"`
	Message    string `json:"message"`
}

type VerifyRequest struct {
	PublicKey string `json:"public_key"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// API response payloads.

type KeypairResponse struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	Algorithm  string `json:"algorithm"`
}

type EncapsulateResponse struct {
	Ciphertext   string `json:"ciphertext"`
	SharedSecret string `json:"shared_secret"`
}

type DecapsulateResponse struct {
	SharedSecret string `json:"shared_secret"`
}

type SignResponse struct {
	Signature string `json:"signature"`
	Message   string `json:"message"`
}

type VerifyResponse struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success         bool        `json:"success"`
	Result          interface{} `json:"result,omitempty"`
	ExecutionTimeMs float64     `json:"execution_time_ms,omitempty"`
	Error           string      `json:"error,omitempty"`
}

// HistoryResponse is the payload of GET /api/history.
type HistoryResponse struct {
	KEMOperations []KEMOperationRecord `json:"kem_operations"`
	SIGOperations []SIGOperationRecord `json:"sig_operations"`
}

// SystemInfo describes the running provider configuration, reported by
// GET /api/metrics.
type SystemInfo struct {
	Provider     string `json:"provider"`
	KEMAlgorithm string `json:"kem_algorithm"`
	SIGAlgorithm string `json:"sig_algorithm"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	CPUCount     int    `json:"cpu_count"`
}

// MetricsResponse is the payload of GET /api/metrics.
type MetricsResponse struct {
	Success    bool                             `json:"success"`
	Usage      ResourceUsage                    `json:"usage"`
	Budget     BudgetConfig                     `json:"budget"`
	SystemInfo SystemInfo                       `json:"system_info"`
	Stats      map[OperationKind]OperationStats `json:"performance_stats"`
	Registry   map[string]interface{}           `json:"registry,omitempty"`
}
