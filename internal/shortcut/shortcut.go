// Package shortcut manages the per-query-directory alias table mapping
// human-friendly names to snapshot filenames.
package shortcut

import (
	"errors"
	"fmt"
	"path/filepath"

	"graphdrift/internal/storage"
)

// FileName is the alias table's filename inside a query directory.
// LegacyFileName is read as a fallback for directories written by older
// layouts; writes always go to FileName.
const (
	FileName       = "shortcut.json"
	LegacyFileName = "report_info.json"
)

// MostRecent is the alias refreshed after every successful update.
const MostRecent = "most-recent"

// ErrNoShortcutFile is returned when a query directory has no alias
// table at all.
var ErrNoShortcutFile = errors.New("query directory has no shortcut file")

// Shortcut is a persisted alias table scoped to one query directory.
type Shortcut struct {
	Name      string            `json:"name"`
	Shortcuts map[string]string `json:"shortcuts"` // alias -> target filename (or another alias)
}

// Load validates a decoded JSON document and builds a Shortcut from it.
func Load(data map[string]any) (Shortcut, error) {
	s := Shortcut{Shortcuts: map[string]string{}}
	if raw, ok := data["name"]; ok {
		name, ok := raw.(string)
		if !ok {
			return Shortcut{}, &storage.ValidationError{Field: "name", Msg: "must be a string"}
		}
		s.Name = name
	}
	raw, ok := data["shortcuts"]
	if !ok {
		return Shortcut{}, &storage.ValidationError{Field: "shortcuts", Msg: "missing required field"}
	}
	mapping, ok := raw.(map[string]any)
	if !ok {
		return Shortcut{}, &storage.ValidationError{Field: "shortcuts", Msg: "must be a mapping of strings to strings"}
	}
	for alias, target := range mapping {
		t, ok := target.(string)
		if !ok {
			return Shortcut{}, &storage.ValidationError{Field: "shortcuts", Msg: "must be a mapping of strings to strings"}
		}
		s.Shortcuts[alias] = t
	}
	return s, nil
}

// Dump converts a Shortcut back into the document shape accepted by Load.
func Dump(s Shortcut) map[string]any {
	return map[string]any{
		"name":      s.Name,
		"shortcuts": s.Shortcuts,
	}
}

// Resolve maps name through the alias table with exactly one lookup.
// A name that is not an alias is returned unchanged and treated as a
// literal filename. Chained aliases (an alias whose target is itself an
// alias) are deliberately not walked; Add may record them, but the read
// path stops after one hop.
func (s Shortcut) Resolve(name string) string {
	if target, ok := s.Shortcuts[name]; ok {
		return target
	}
	return name
}

// LoadDir loads the alias table of a query directory, falling back to
// the legacy filename. Returns ErrNoShortcutFile when neither exists.
func LoadDir(dir string) (Shortcut, error) {
	path := filepath.Join(dir, FileName)
	if !storage.HasFile(path) {
		legacy := filepath.Join(dir, LegacyFileName)
		if !storage.HasFile(legacy) {
			return Shortcut{}, fmt.Errorf("%s: %w", dir, ErrNoShortcutFile)
		}
		path = legacy
	}
	var data map[string]any
	if err := storage.Load(path, &data); err != nil {
		return Shortcut{}, err
	}
	s, err := Load(data)
	if err != nil {
		if verr, ok := err.(*storage.ValidationError); ok {
			verr.Path = path
		}
		return Shortcut{}, err
	}
	return s, nil
}

// WriteDir persists the alias table back to the query directory. The
// table has no versioning; each write overwrites the previous one.
func WriteDir(s Shortcut, dir string) error {
	return storage.Write(Dump(s), filepath.Join(dir, FileName))
}

// Add sets alias to target in the directory's alias table
// (insert-or-replace) and persists it. The directory must already have
// an alias table; a missing one is an error, not an empty default.
func Add(dir, alias, target string) error {
	s, err := LoadDir(dir)
	if err != nil {
		return err
	}
	s.Shortcuts[alias] = target
	return WriteDir(s, dir)
}
