// Package filex prepares the local directories the client writes into.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveDir makes sure dir exists and returns it as an absolute path.
// Relative names are taken from the working directory.
func ResolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, EnsureDir(dir)
	}
	return EnsureSubdDir(dir)
}

// EnsureSubdDir creates dirName under the working directory and returns its
// absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// EnsureDir creates dir and its parents if missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
