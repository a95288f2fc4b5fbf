package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePath checks an operator-supplied file path before it is opened.
// Absolute paths are allowed; traversal components and NUL bytes are not.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("file path contains NUL byte")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal: %s", path)
	}

	return nil
}
