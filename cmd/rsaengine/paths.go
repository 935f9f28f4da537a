package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecurePath validates that a file path doesn't escape the working directory
// and returns it in absolute form.
func SecurePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	base, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	rel, err := filepath.Rel(base, absPath)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes working directory", path)
	}
	return absPath, nil
}

func readFile(path string) ([]byte, error) {
	absPath, err := SecurePath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(absPath) // #nosec G304 -- absPath validated by SecurePath
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	absPath, err := SecurePath(path)
	if err != nil {
		return err
	}
	return os.WriteFile(absPath, data, perm)
}
