package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates the upload or artifact directory if it does not exist.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin joins a client-supplied file name under root, dropping any
// directory components so uploads cannot escape the upload root.
func SafeJoin(root, name string) string {
	return filepath.Join(root, filepath.Base(name))
}
