// Package security keeps files written by the CLI inside the directory the
// user pointed at.
package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrPathEscape indicates the resolved path would escape the trusted root directory.
	ErrPathEscape = errors.New("path escapes base directory")
	// ErrUnsafeName indicates a file name component with separators or traversal.
	ErrUnsafeName = errors.New("unsafe file name")
)

// ResolveWithin joins the provided path elements under the given base directory and ensures
// the resulting path never traverses outside of that base. The returned path is absolute.
func ResolveWithin(base string, elems ...string) (string, error) {
	if base == "" {
		return "", errors.New("base directory is required")
	}

	cleanBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base path: %w", err)
	}

	joined := filepath.Join(append([]string{cleanBase}, elems...)...)
	target, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("resolve target path: %w", err)
	}

	rel, err := filepath.Rel(cleanBase, target)
	if err != nil {
		return "", fmt.Errorf("relativize path: %w", err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, target)
	}

	return target, nil
}

// ReportPath returns <dir>/<host>.json. The host must be a single path
// component.
func ReportPath(dir, host string) (string, error) {
	if host == "" || host == "." || host == ".." || strings.ContainsAny(host, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, host)
	}
	return ResolveWithin(dir, host+".json")
}

// WriteJSONReport writes v as indented JSON to <dir>/<host>.json, creating
// dir when needed, and returns the written path.
func WriteJSONReport(dir, host string, v any) (string, error) {
	path, err := ReportPath(dir, host)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	// Write through a temp file so readers never see a half-written report.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".insec-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o640); err != nil {
		return "", fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename report: %w", err)
	}
	return path, nil
}
