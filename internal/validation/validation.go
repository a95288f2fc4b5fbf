package validation

import (
	"encoding/base64"
	"fmt"

	"pqgate/internal/constants"
	"pqgate/internal/errors"
)

// DecodeRequiredField base64-decodes a required request field. An empty value
// or malformed encoding is an INVALID_ENCODING error; no backend call may be
// made with such input.
func DecodeRequiredField(field, value string) ([]byte, error) {
	if value == "" {
		return nil, errors.NewEncodingError(field, fmt.Sprintf("%s is required", field))
	}

	if len(value) > constants.MaxEncodedFieldLength {
		return nil, errors.NewEncodingError(field,
			fmt.Sprintf("%s too long (max %d characters)", field, constants.MaxEncodedFieldLength))
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, errors.NewEncodingError(field, fmt.Sprintf("%s is not valid base64", field))
	}

	if len(decoded) == 0 {
		return nil, errors.NewEncodingError(field, fmt.Sprintf("%s is empty", field))
	}

	return decoded, nil
}

// ValidateMessage checks a plain-text message field before signing or
// verification.
func ValidateMessage(message string) error {
	if message == "" {
		return errors.NewEncodingError("message", "message is required")
	}

	if len(message) > constants.MaxMessageLength {
		return errors.NewEncodingError("message",
			fmt.Sprintf("message too long (max %d bytes)", constants.MaxMessageLength))
	}

	return nil
}

// Encode converts raw bytes into their transport form. Paired with
// DecodeRequiredField it is a lossless round trip.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}
