// Package report renders drift results for humans and for machines.
// Rendering is pure: no I/O beyond the returned string.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"graphdrift/internal/compare"
)

// FormatText renders a diff as grouped sections, one line per field
// per row.
func FormatText(d compare.Diff) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Drift for query %s\n", d.QueryName))
	sb.WriteString("\nNew Query Results:\n")
	writeRows(&sb, d.Properties, d.Added)
	sb.WriteString("\nMissing Query Results:\n")
	writeRows(&sb, d.Properties, d.Removed)
	return sb.String()
}

func writeRows(sb *strings.Builder, properties []string, rows []compare.Row) {
	if len(rows) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	for i, row := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		for j, field := range row {
			if field.IsList() {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", properties[j], strings.Join(field.List, ", ")))
			} else {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", properties[j], field.Scalar))
			}
		}
	}
}

// FormatJSON renders a diff as {"added": [...], "removed": [...]},
// each row rehydrated into a column-name -> value object. List-valued
// fields become JSON arrays, scalars become JSON strings.
func FormatJSON(d compare.Diff) (string, error) {
	payload := map[string]any{
		"added":   rowObjects(d.Properties, d.Added),
		"removed": rowObjects(d.Properties, d.Removed),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func rowObjects(properties []string, rows []compare.Row) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]any, len(row))
		for j, field := range row {
			if field.IsList() {
				obj[properties[j]] = field.List
			} else {
				obj[properties[j]] = field.Scalar
			}
		}
		out = append(out, obj)
	}
	return out
}
