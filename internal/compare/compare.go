// Package compare computes drift between two snapshots of the same
// query as a pure set difference over result rows.
package compare

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"graphdrift/internal/state"
)

// Precondition violations, one named error each.
var (
	ErrNameMismatch   = errors.New("state names do not match")
	ErrQueryMismatch  = errors.New("validation queries do not match")
	ErrSchemaMismatch = errors.New("state properties do not match")
)

// Field is one reported value of a drifted row. List is non-nil when
// the underlying snapshot field was a multi-valued column; reporters
// branch on that distinction.
type Field struct {
	Scalar string
	List   []string
}

// IsList reports whether the field held a multi-valued column.
func (f Field) IsList() bool {
	return f.List != nil
}

// Row is one drifted result row, aligned to the query's properties.
type Row []Field

// Diff is the drift between two snapshots: rows present only in the
// end state (Added) and rows present only in the start state (Removed).
type Diff struct {
	QueryName  string
	Properties []string
	Added      []Row
	Removed    []Row
}

// Compare computes the set difference between two snapshots of the
// same query. Both states must agree on name, validation query, and
// properties. A row that changed one field is reported as one removal
// plus one addition; there is no modified-row detection.
func Compare(start, end state.State) (Diff, error) {
	if start.Name != end.Name {
		return Diff{}, fmt.Errorf("%w: %q vs %q", ErrNameMismatch, start.Name, end.Name)
	}
	if start.ValidationQuery != end.ValidationQuery {
		return Diff{}, fmt.Errorf("%w for query %q", ErrQueryMismatch, start.Name)
	}
	if !equalStrings(start.Properties, end.Properties) {
		return Diff{}, fmt.Errorf("%w for query %q", ErrSchemaMismatch, start.Name)
	}
	return Diff{
		QueryName:  end.Name,
		Properties: end.Properties,
		Added:      difference(start.Results, end.Results),
		Removed:    difference(end.Results, start.Results),
	}, nil
}

// difference returns the rows of b absent from a, in b's order.
func difference(a, b [][]string) []Row {
	seen := make(map[string]bool, len(a))
	for _, row := range a {
		seen[rowKey(row)] = true
	}
	var out []Row
	for _, row := range b {
		if seen[rowKey(row)] {
			continue
		}
		out = append(out, rehydrate(row))
	}
	return out
}

// rehydrate splits canonicalized multi-value fields back into their
// component lists; scalar fields pass through unchanged.
func rehydrate(row []string) Row {
	out := make(Row, 0, len(row))
	for _, field := range row {
		scalar, list := state.SplitField(field)
		out = append(out, Field{Scalar: scalar, List: list})
	}
	return out
}

// rowKey builds a hashable identity for a row. Each field is length
// prefixed, so no field content can fake a field boundary.
func rowKey(row []string) string {
	var sb strings.Builder
	for _, field := range row {
		sb.WriteString(strconv.Itoa(len(field)))
		sb.WriteByte(':')
		sb.WriteString(field)
	}
	return sb.String()
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
