// Package update refreshes every query directory's snapshot from the
// live graph database.
package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"graphdrift/internal/graphdb"
	"graphdrift/internal/shortcut"
	"graphdrift/internal/state"
	"graphdrift/internal/storage"
)

// TemplateFileName describes the validation query and expected schema
// of a query directory.
const TemplateFileName = "template.json"

// Summary reports which query directories a run refreshed and which it
// had to skip over recoverable errors.
type Summary struct {
	Updated []string
	Skipped []string
}

// Run walks every directory under root and refreshes each query
// directory's snapshot: the validation query is re-run, the results
// canonicalized and persisted under a fresh filename, and the
// most-recent shortcut repointed. Malformed templates, missing files,
// and query syntax errors skip only that directory; anything else
// (connection loss, cancellation) aborts the run. Directories without
// a template file are not query directories and are ignored.
func Run(ctx context.Context, logger *slog.Logger, session graphdb.Session, root string) (Summary, error) {
	var summary Summary
	dirs, err := storage.Walk(root)
	if err != nil {
		return summary, err
	}
	filename := NewSnapshotName(time.Now())
	for _, dir := range dirs {
		if !storage.HasFile(filepath.Join(dir, TemplateFileName)) {
			logger.Debug("no template in directory, ignoring", "directory", dir)
			continue
		}
		if err := refreshDirectory(ctx, logger, session, dir, filename); err != nil {
			if !recoverable(err) {
				return summary, err
			}
			logger.Error("skipping query directory", "directory", dir, "error", err)
			summary.Skipped = append(summary.Skipped, dir)
			continue
		}
		summary.Updated = append(summary.Updated, dir)
	}
	return summary, nil
}

// NewSnapshotName derives a collision-resistant snapshot filename: a
// whole-second UTC timestamp plus a random suffix, so two runs within
// the same second cannot overwrite each other.
func NewSnapshotName(now time.Time) string {
	return fmt.Sprintf("%s-%s.json", now.UTC().Format("20060102-150405"), uuid.NewString()[:8])
}

func refreshDirectory(ctx context.Context, logger *slog.Logger, session graphdb.Session, dir, filename string) error {
	st, err := state.LoadFile(filepath.Join(dir, TemplateFileName))
	if err != nil {
		return err
	}
	logger.Debug("updating results", "query", st.Name, "directory", dir)

	res, err := session.Run(ctx, st.ValidationQuery)
	if err != nil {
		return err
	}

	// The live run's column names overwrite the template's so the
	// persisted snapshot stays self-describing.
	if res.Keys != nil {
		st.Properties = res.Keys
	}
	st.Results = canonicalize(res.Rows)

	if err := state.WriteFile(st, filepath.Join(dir, filename)); err != nil {
		return err
	}
	return shortcut.Add(dir, shortcut.MostRecent, filename)
}

// canonicalize stringifies every field, encodes list-typed columns as
// sorted joined strings, and sorts the full row list for determinism.
func canonicalize(rows [][]any) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		values := make([]string, 0, len(row))
		for _, field := range row {
			values = append(values, stringify(field))
		}
		out = append(out, values)
	}
	sort.Slice(out, func(i, j int) bool { return rowLess(out[i], out[j]) })
	return out
}

func stringify(field any) string {
	switch v := field.(type) {
	case []any:
		components := make([]string, 0, len(v))
		for _, c := range v {
			components = append(components, fmt.Sprint(c))
		}
		return state.EncodeList(components)
	case []string:
		return state.EncodeList(v)
	default:
		return fmt.Sprint(field)
	}
}

func rowLess(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// recoverable reports whether an error should skip only the current
// query directory. The set is closed: malformed documents, missing
// files, absent shortcut tables, and statement-level query errors are
// skippable; everything else aborts the whole run.
func recoverable(err error) bool {
	var verr *storage.ValidationError
	switch {
	case errors.As(err, &verr):
		return true
	case errors.Is(err, storage.ErrNotFound):
		return true
	case errors.Is(err, shortcut.ErrNoShortcutFile):
		return true
	case graphdb.IsQueryError(err):
		return true
	}
	return false
}
