package util

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CleanupFiles removes multiple files, ignoring errors
func CleanupFiles(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// SiblingTempPath returns a unique path in the same directory as target that
// keeps target's extension, so muxers can still infer the container format.
// Renaming it over target afterwards stays on one filesystem.
func SiblingTempPath(target string) string {
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	base := strings.TrimSuffix(filepath.Base(target), ext)
	return filepath.Join(dir, "."+base+".partial-"+uuid.NewString()[:8]+ext)
}
