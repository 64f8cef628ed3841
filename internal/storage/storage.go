// Package storage is the filesystem adapter for query directories.
// It reads and writes JSON files and enumerates query directories.
// There is no caching and no locking: every call hits the filesystem,
// and concurrent writers against the same directory are not coordinated
// (single-writer assumption).
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a requested file doesn't exist.
var ErrNotFound = errors.New("file not found")

// ValidationError describes a malformed JSON document: a required field
// is missing or has the wrong shape.
type ValidationError struct {
	Path  string // File the document came from, when known
	Field string // Offending field
	Msg   string
}

func (e *ValidationError) Error() string {
	msg := e.Msg
	if e.Field != "" {
		msg = fmt.Sprintf("field %q: %s", e.Field, e.Msg)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, msg)
	}
	return msg
}

// Load reads a JSON file into v.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ValidationError{Path: path, Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// Write serializes v as indented JSON and overwrites path.
func Write(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Walk returns every directory found under root, at any depth, excluding
// root itself. Processing order of the returned directories is unspecified.
func Walk(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// HasFile reports whether path exists and is a regular file.
func HasFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
