// Package filesystem backs the 파일_읽기/파일_쓰기/절대경로인가/디렉토리인가
// built-ins — a thin os/path-filepath wrapper, grounded on the teacher's
// internal/filesystem/filesystem.go (which wraps the same stdlib packages
// for its own baseline/scan tooling) but trimmed to the four operations
// SPEC_FULL.md §6 actually names: no baselines, watchers, or hash scanning
// survive, since nothing in the spec calls for file-integrity monitoring.
package filesystem

import (
	"os"
	"path/filepath"
)

// ReadFile returns path's full contents as a string.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile overwrites path with contents, creating it (mode 0644) if
// absent.
func WriteFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0644)
}

// IsAbs reports whether path is already absolute.
func IsAbs(path string) bool {
	return filepath.IsAbs(path)
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Abs resolves path against the process's working directory.
func Abs(path string) (string, error) {
	return filepath.Abs(path)
}
