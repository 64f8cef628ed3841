package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphdrift/internal/compare"
)

func sampleDiff() compare.Diff {
	return compare.Diff{
		QueryName:  "exposed-endpoints",
		Properties: []string{"n.id", "n.port", "n.protocols"},
		Added: []compare.Row{
			{{Scalar: "36"}, {Scalar: "37"}, {List: []string{"38", "39", "40"}}},
		},
		Removed: []compare.Row{
			{{Scalar: "7"}, {Scalar: "14"}, {List: []string{"21", "28", "35"}}},
		},
	}
}

func TestFormatText(t *testing.T) {
	out := FormatText(sampleDiff())

	assert.Contains(t, out, "Drift for query exposed-endpoints")
	assert.Contains(t, out, "New Query Results:")
	assert.Contains(t, out, "Missing Query Results:")
	assert.Contains(t, out, "n.id: 36")
	assert.Contains(t, out, "n.protocols: 38, 39, 40")
	assert.Contains(t, out, "n.id: 7")
	assert.Contains(t, out, "n.protocols: 21, 28, 35")

	// Added rows must be listed before removed rows.
	assert.Less(t, strings.Index(out, "New Query Results:"), strings.Index(out, "Missing Query Results:"))
}

func TestFormatTextEmptyDiff(t *testing.T) {
	out := FormatText(compare.Diff{QueryName: "users", Properties: []string{"id"}})
	assert.Contains(t, out, "New Query Results:\n  (none)")
	assert.Contains(t, out, "Missing Query Results:\n  (none)")
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON(sampleDiff())
	require.NoError(t, err)

	var payload struct {
		Added   []map[string]any `json:"added"`
		Removed []map[string]any `json:"removed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))

	require.Len(t, payload.Added, 1)
	assert.Equal(t, "36", payload.Added[0]["n.id"])
	assert.Equal(t, []any{"38", "39", "40"}, payload.Added[0]["n.protocols"])

	require.Len(t, payload.Removed, 1)
	assert.Equal(t, "7", payload.Removed[0]["n.id"])
	assert.Equal(t, []any{"21", "28", "35"}, payload.Removed[0]["n.protocols"])
}

func TestFormatJSONEmptyDiff(t *testing.T) {
	out, err := FormatJSON(compare.Diff{QueryName: "users"})
	require.NoError(t, err)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.JSONEq(t, "[]", string(payload["added"]))
	assert.JSONEq(t, "[]", string(payload["removed"]))
}
