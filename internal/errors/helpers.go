package errors

import (
	"fmt"
	"net/http"
)

// Common error creators for frequent use cases

// NewResourceExceededError creates the budget-violation error. It is marked
// retryable because the caller may succeed once pressure subsides.
func NewResourceExceededError(memoryMB, maxMemoryMB, cpuPercent, maxCPUPercent float64) *AppError {
	err := New(ErrCodeResourceExceeded, "resource constraints exceeded")
	err.Retryable = true
	return err.
		WithContext("memory_mb", memoryMB).
		WithContext("max_memory_mb", maxMemoryMB).
		WithContext("cpu_percent", cpuPercent).
		WithContext("max_cpu_percent", maxCPUPercent).
		WithUserMessage("Resource constraints exceeded, try again later")
}

// NewEncodingError creates an invalid-encoding error with field context
func NewEncodingError(field, message string) *AppError {
	return New(ErrCodeInvalidEncoding, message).
		WithContext("field", field).
		WithUserMessage(fmt.Sprintf("Invalid %s: %s", field, message))
}

// NewBackendError wraps a crypto provider failure. The original message is
// preserved in the cause chain.
func NewBackendError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeBackendFailure, fmt.Sprintf("%s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage(fmt.Sprintf("%s failed: %v", operation, err))
}

// NewAlgorithmMismatchError reports a key that does not match the configured
// algorithm. It surfaces like a backend failure but keeps its own code so
// callers can distinguish the reason.
func NewAlgorithmMismatchError(algorithm, detail string) *AppError {
	return New(ErrCodeAlgorithmMismatch, fmt.Sprintf("key does not match algorithm %s: %s", algorithm, detail)).
		WithContext("algorithm", algorithm).
		WithUserMessage(fmt.Sprintf("Key does not match configured algorithm %s", algorithm))
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewDatabaseError creates a history store error with operation context
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseQuery, fmt.Sprintf("database %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("History store operation failed")
}

// HTTPStatus maps an error code to the status the API boundary returns.
// Every gateway failure is a client error: 429 for resource pressure so
// callers know a retry may succeed, 400 for everything else.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeResourceExceeded:
		return http.StatusTooManyRequests
	case ErrCodeInvalidEncoding, ErrCodeInvalidInput, ErrCodeAlgorithmMismatch, ErrCodeBackendFailure:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
