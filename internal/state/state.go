// Package state models one monitoring query's results captured at a
// point in time, along with its (de)serialization and the canonical
// encoding for multi-valued result fields.
package state

import (
	"fmt"
	"sort"
	"strings"

	"graphdrift/internal/storage"
)

// Separator joins the components of a multi-valued result field into a
// single string. Components are sorted before joining so that two rows
// differing only in reported list order compare as equal.
const Separator = "|"

// State is a snapshot of one query's results at one point in time.
// Results rows are positional tuples aligned to Properties; every row
// has the same arity as Properties. Snapshot files are immutable
// history: a refresh always writes a new file.
type State struct {
	Name            string     `json:"name"`             // Query identifier
	ValidationQuery string     `json:"validation_query"` // Query text that produced Results
	Properties      []string   `json:"properties"`       // Column names, order significant
	Results         [][]string `json:"results"`          // Rows of string-encoded field values
}

// Load validates a decoded JSON document and builds a State from it.
// The column list may appear under "properties" or the legacy keys
// "tag" or "keys". Every result row must have the same arity as the
// column list. Unknown keys are ignored.
func Load(data map[string]any) (State, error) {
	var s State
	var err error

	if s.Name, err = requireString(data, "name"); err != nil {
		return State{}, err
	}
	if s.ValidationQuery, err = requireString(data, "validation_query"); err != nil {
		return State{}, err
	}

	propKey := "properties"
	raw, ok := data[propKey]
	if !ok || raw == nil {
		ok = false
		for _, legacy := range []string{"tag", "keys"} {
			if raw, ok = data[legacy]; ok && raw != nil {
				propKey = legacy
				break
			}
			ok = false
		}
	}
	if ok {
		if s.Properties, err = stringSlice(raw, propKey); err != nil {
			return State{}, err
		}
	}

	if raw, ok := data["results"]; ok && raw != nil {
		rows, ok := raw.([]any)
		if !ok {
			return State{}, &storage.ValidationError{Field: "results", Msg: "must be a list of rows"}
		}
		s.Results = make([][]string, 0, len(rows))
		for i, row := range rows {
			fields, err := stringSlice(row, fmt.Sprintf("results[%d]", i))
			if err != nil {
				return State{}, err
			}
			if len(fields) != len(s.Properties) {
				return State{}, &storage.ValidationError{
					Field: fmt.Sprintf("results[%d]", i),
					Msg:   fmt.Sprintf("has %d fields but properties has %d", len(fields), len(s.Properties)),
				}
			}
			s.Results = append(s.Results, fields)
		}
	}
	return s, nil
}

// Dump converts a State back into the JSON document shape accepted by
// Load. Legacy column-list keys are never written.
func Dump(s State) map[string]any {
	return map[string]any{
		"name":             s.Name,
		"validation_query": s.ValidationQuery,
		"properties":       s.Properties,
		"results":          s.Results,
	}
}

// LoadFile reads and validates a snapshot file.
func LoadFile(path string) (State, error) {
	var data map[string]any
	if err := storage.Load(path, &data); err != nil {
		return State{}, err
	}
	s, err := Load(data)
	if err != nil {
		if verr, ok := err.(*storage.ValidationError); ok {
			verr.Path = path
		}
		return State{}, err
	}
	return s, nil
}

// WriteFile persists a snapshot. The caller chooses the filename; old
// snapshot files are never rewritten.
func WriteFile(s State, path string) error {
	return storage.Write(Dump(s), path)
}

// EncodeList canonicalizes a multi-valued field: each component
// stringified, the set sorted, the whole joined with Separator.
func EncodeList(components []string) string {
	sorted := make([]string, len(components))
	copy(sorted, components)
	sort.Strings(sorted)
	return strings.Join(sorted, Separator)
}

// SplitField reverses EncodeList for reporting. A field that splits
// into more than one component is returned as the component list;
// anything else is a scalar and list is nil.
func SplitField(field string) (scalar string, list []string) {
	parts := strings.Split(field, Separator)
	if len(parts) > 1 {
		return "", parts
	}
	return field, nil
}

func requireString(data map[string]any, field string) (string, error) {
	raw, ok := data[field]
	if !ok {
		return "", &storage.ValidationError{Field: field, Msg: "missing required field"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &storage.ValidationError{Field: field, Msg: "must be a string"}
	}
	return s, nil
}

func stringSlice(raw any, field string) ([]string, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, &storage.ValidationError{Field: field, Msg: "must be a list of strings"}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &storage.ValidationError{Field: field, Msg: "must be a list of strings"}
		}
		out = append(out, s)
	}
	return out, nil
}
