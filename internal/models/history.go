package models

import "time"

// KEMOperationRecord is one row of the KEM history table.
type KEMOperationRecord struct {
	ID           int64         `json:"id"`
	Operation    OperationKind `json:"operation"`
	PublicKey    string        `json:"public_key,omitempty"`
	PrivateKey   string        `json:"private_key,omitempty"`
	Ciphertext   string        `json:"ciphertext,omitempty"`
	SharedSecret string        `json:"shared_secret,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// SIGOperationRecord is one row of the signature history table.
type SIGOperationRecord struct {
	ID         int64         `json:"id"`
	Operation  OperationKind `json:"operation"`
	PublicKey  string        `json:"public_key,omitempty"`
	PrivateKey string        `json:"private_key,omitempty"`
	Message    string        `json:"message,omitempty"`
	Signature  string        `json:"signature,omitempty"`
	Valid      *bool         `json:"is_valid,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// OperationStats aggregates the recorded timing metrics for one operation kind.
type OperationStats struct {
	AvgDurationMs float64 `json:"avg_duration_ms"`
	Count         int64   `json:"count"`
}
