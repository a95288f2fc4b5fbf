package models

// OperationKind identifies a single gateway operation for history and metrics.
type OperationKind string

const (
	OpKEMKeygen      OperationKind = "kem_keygen"
	OpKEMEncapsulate OperationKind = "kem_encapsulate"
	OpKEMDecapsulate OperationKind = "kem_decapsulate"
	OpSIGKeygen      OperationKind = "sig_keygen"
	OpSIGSign        OperationKind = "sig_sign"
	OpSIGVerify      OperationKind = "sig_verify"
)

// KEMOperations lists the operation kinds recorded in the KEM history table.
var KEMOperations = []OperationKind{OpKEMKeygen, OpKEMEncapsulate, OpKEMDecapsulate}

// SIGOperations lists the operation kinds recorded in the signature history table.
var SIGOperations = []OperationKind{OpSIGKeygen, OpSIGSign, OpSIGVerify}

// Keypair holds freshly generated key material. The gateway returns it to the
// caller and keeps no reference; callers own the bytes.
type Keypair struct {
	PublicKey  []byte
	PrivateKey []byte
	Algorithm  string
}

// EncapsulationResult is the output of a KEM encapsulation. The shared secret
// is always 32 bytes for the supported schemes.
type EncapsulationResult struct {
	Ciphertext   []byte
	SharedSecret []byte
}

// PerformanceSample is produced once per successful gateway call and handed to
// the recorder. The gateway retains no history.
type PerformanceSample struct {
	Operation  OperationKind `json:"operation"`
	DurationMs float64       `json:"duration_ms"`
	MemoryMB   float64       `json:"memory_mb"`
	CPUPercent float64       `json:"cpu_percent"`
}

// ResourceUsage is a point-in-time reading from the resource monitor.
type ResourceUsage struct {
	MemoryMB   float64 `json:"memory_mb"`
	CPUPercent float64 `json:"cpu_percent"`
}
