package compare

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphdrift/internal/state"
)

func makeState(results [][]string) state.State {
	return state.State{
		Name:            "exposed-endpoints",
		ValidationQuery: "MATCH (n:Endpoint) RETURN n.id, n.port, n.protocols",
		Properties:      []string{"n.id", "n.port", "n.protocols"},
		Results:         results,
	}
}

func TestCompareIdentity(t *testing.T) {
	s := makeState([][]string{
		{"1", "8", "15|22|29"},
		{"2", "9", "16|23|30"},
	})
	diff, err := Compare(s, s)
	require.NoError(t, err)
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
}

func TestCompareSeedScenario(t *testing.T) {
	start := makeState([][]string{
		{"1", "8", "15|22|29"},
		{"2", "9", "16|23|30"},
		{"3", "10", "17|24|31"},
		{"4", "11", "18|25|32"},
		{"5", "12", "19|26|33"},
		{"6", "13", "20|27|34"},
		{"7", "14", "21|28|35"},
	})
	end := makeState([][]string{
		{"1", "8", "15|22|29"},
		{"2", "9", "16|23|30"},
		{"3", "10", "17|24|31"},
		{"4", "11", "18|25|32"},
		{"5", "12", "19|26|33"},
		{"6", "13", "20|27|34"},
		{"36", "37", "38|39|40"},
	})

	diff, err := Compare(start, end)
	require.NoError(t, err)

	require.Len(t, diff.Added, 1)
	assert.Equal(t, Row{
		{Scalar: "36"},
		{Scalar: "37"},
		{List: []string{"38", "39", "40"}},
	}, diff.Added[0])

	require.Len(t, diff.Removed, 1)
	assert.Equal(t, Row{
		{Scalar: "7"},
		{Scalar: "14"},
		{List: []string{"21", "28", "35"}},
	}, diff.Removed[0])
}

func TestComparePreconditions(t *testing.T) {
	base := makeState(nil)

	name := base
	name.Name = "another-query"
	_, err := Compare(base, name)
	assert.True(t, errors.Is(err, ErrNameMismatch), "got %v", err)

	query := base
	query.ValidationQuery = "MATCH (n) RETURN n"
	_, err = Compare(base, query)
	assert.True(t, errors.Is(err, ErrQueryMismatch), "got %v", err)

	schema := base
	schema.Properties = []string{"n.id", "n.port"}
	_, err = Compare(base, schema)
	assert.True(t, errors.Is(err, ErrSchemaMismatch), "got %v", err)
}

// Preconditions are checked even when result rows are identical.
func TestComparePreconditionBeatsEqualRows(t *testing.T) {
	rows := [][]string{{"1", "2", "3"}}
	a := makeState(rows)
	b := makeState(rows)
	b.Name = "renamed"
	_, err := Compare(a, b)
	assert.True(t, errors.Is(err, ErrNameMismatch), "got %v", err)
}

func TestCompareAddedPreservesEndOrder(t *testing.T) {
	start := makeState([][]string{{"z", "z", "z"}})
	end := makeState([][]string{
		{"9", "1", "x"},
		{"z", "z", "z"},
		{"1", "9", "y"},
	})
	diff, err := Compare(start, end)
	require.NoError(t, err)
	require.Len(t, diff.Added, 2)
	assert.Equal(t, "9", diff.Added[0][0].Scalar)
	assert.Equal(t, "1", diff.Added[1][0].Scalar)
}

// Rows whose concatenated field contents happen to match must still
// compare as distinct rows.
func TestCompareFieldBoundaries(t *testing.T) {
	start := makeState([][]string{{"a\x1f", "b", "z"}})
	end := makeState([][]string{{"a", "\x1fb", "z"}})

	diff, err := Compare(start, end)
	require.NoError(t, err)
	require.Len(t, diff.Added, 1)
	require.Len(t, diff.Removed, 1)
	assert.Equal(t, "a", diff.Added[0][0].Scalar)
	assert.Equal(t, "a\x1f", diff.Removed[0][0].Scalar)
}

func genRows() gopter.Gen {
	return gen.SliceOf(gen.SliceOfN(3, gen.AlphaString()))
}

// TestCompareSymmetry_Property checks that swapping the two states
// swaps added and removed.
func TestCompareSymmetry_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("compare(a,b).added == compare(b,a).removed", prop.ForAll(
		func(rowsA, rowsB [][]string) bool {
			a := makeState(rowsA)
			b := makeState(rowsB)
			forward, err := Compare(a, b)
			if err != nil {
				return false
			}
			backward, err := Compare(b, a)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(forward.Added, backward.Removed) &&
				reflect.DeepEqual(forward.Removed, backward.Added)
		},
		genRows(),
		genRows(),
	))

	properties.TestingRun(t)
}

// TestCompareIdentity_Property checks that a state never drifts against
// itself.
func TestCompareIdentity_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("compare(s,s) is empty", prop.ForAll(
		func(rows [][]string) bool {
			s := makeState(rows)
			diff, err := Compare(s, s)
			if err != nil {
				return false
			}
			return len(diff.Added) == 0 && len(diff.Removed) == 0
		},
		genRows(),
	))

	properties.TestingRun(t)
}
