package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-version-engine/internal/catalog"
)

func makeVersion(t *testing.T, ver string, forward, rollback int) catalog.Version {
	t.Helper()

	v := catalog.Version{Version: ver, Description: "test " + ver}

	for i := 0; i < forward; i++ {
		v.Forward = append(v.Forward, catalog.Script{
			ID:             ver + "_fwd_" + string(rune('a'+i)),
			Name:           "forward",
			SQL:            "SELECT 1",
			ExecutionOrder: i + 1,
		})
	}

	for i := 0; i < rollback; i++ {
		v.Rollback = append(v.Rollback, catalog.Script{
			ID:             ver + "_rb_" + string(rune('a'+i)),
			Name:           "rollback",
			SQL:            "SELECT 1",
			ExecutionOrder: i + 1,
		})
	}

	return v
}

func TestNew_sortsAscending(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New([]catalog.Version{
		makeVersion(t, "1.2.0", 1, 1),
		makeVersion(t, "1.0.0", 1, 0),
		makeVersion(t, "1.10.0", 1, 1),
		makeVersion(t, "1.1.0", 1, 1),
	})
	require.NoError(t, err)

	vs := cat.Versions()
	require.Len(t, vs, 4)

	assert.Equal(t, "1.0.0", vs[0].Version)
	assert.Equal(t, "1.1.0", vs[1].Version)
	assert.Equal(t, "1.2.0", vs[2].Version)
	assert.Equal(t, "1.10.0", vs[3].Version) // numeric, not lexicographic

	assert.Equal(t, "1.0.0", cat.Earliest())
	assert.Equal(t, "1.10.0", cat.Latest())
}

func TestNew_rejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		versions []catalog.Version
		wantErr  error
	}{
		{
			name:    "empty catalog",
			wantErr: catalog.ErrEmptyCatalog,
		},
		{
			name: "duplicate version",
			versions: []catalog.Version{
				makeVersion(t, "1.0.0", 1, 0),
				makeVersion(t, "1.0.0", 1, 0),
			},
			wantErr: catalog.ErrDuplicateVersion,
		},
		{
			name: "malformed version string",
			versions: []catalog.Version{
				makeVersion(t, "1.x.0", 1, 0),
			},
			wantErr: catalog.ErrInvalidVersion,
		},
		{
			name: "no forward scripts",
			versions: []catalog.Version{
				{Version: "1.0.0"},
			},
			wantErr: catalog.ErrNoForwardScripts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := catalog.New(tt.versions)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_rejectsDuplicateScriptID(t *testing.T) {
	t.Parallel()

	v := catalog.Version{
		Version: "1.0.0",
		Forward: []catalog.Script{
			{ID: "s1", SQL: "SELECT 1", ExecutionOrder: 1},
			{ID: "s1", SQL: "SELECT 2", ExecutionOrder: 2},
		},
	}

	_, err := catalog.New([]catalog.Version{v})
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrDuplicateScript)
}

func TestNew_sortsScriptsByExecutionOrder(t *testing.T) {
	t.Parallel()

	v := catalog.Version{
		Version: "1.0.0",
		Forward: []catalog.Script{
			{ID: "second", SQL: "SELECT 2", ExecutionOrder: 2},
			{ID: "first", SQL: "SELECT 1", ExecutionOrder: 1},
		},
	}

	cat, err := catalog.New([]catalog.Version{v})
	require.NoError(t, err)

	got, ok := cat.Lookup("1.0.0")
	require.True(t, ok)
	require.Len(t, got.Forward, 2)
	assert.Equal(t, "first", got.Forward[0].ID)
	assert.Equal(t, "second", got.Forward[1].ID)
}

func TestNew_fillsMissingChecksums(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New([]catalog.Version{makeVersion(t, "1.0.0", 1, 0)})
	require.NoError(t, err)

	got, ok := cat.Lookup("1.0.0")
	require.True(t, ok)
	assert.Equal(t, catalog.ComputeChecksum("SELECT 1"), got.Forward[0].Checksum)
}

func TestLookup_unknownVersion(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New([]catalog.Version{makeVersion(t, "1.0.0", 1, 0)})
	require.NoError(t, err)

	_, ok := cat.Lookup("9.9.9")
	assert.False(t, ok)
	assert.False(t, cat.Contains("9.9.9"))
	assert.True(t, cat.Contains("1.0.0"))
}

func TestComputeChecksum_deterministic(t *testing.T) {
	t.Parallel()

	a := catalog.ComputeChecksum("CREATE TABLE t (id INT)")
	b := catalog.ComputeChecksum("CREATE TABLE t (id INT)")
	c := catalog.ComputeChecksum("CREATE TABLE u (id INT)")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestNew_doesNotMutateCallerInput(t *testing.T) {
	t.Parallel()

	input := []catalog.Version{
		{
			Version: "1.0.0",
			Forward: []catalog.Script{
				{ID: "second", SQL: "SELECT 2", ExecutionOrder: 2},
				{ID: "first", SQL: "SELECT 1", ExecutionOrder: 1},
			},
			Rollback: []catalog.Script{
				{ID: "rb_b", SQL: "SELECT 4", ExecutionOrder: 2},
				{ID: "rb_a", SQL: "SELECT 3", ExecutionOrder: 1},
			},
		},
	}

	cat, err := catalog.New(input)
	require.NoError(t, err)

	// The catalog's copy is normalized.
	got, ok := cat.Lookup("1.0.0")
	require.True(t, ok)
	assert.Equal(t, "first", got.Forward[0].ID)
	assert.NotEmpty(t, got.Forward[0].Checksum)

	// The caller's slices keep their declared order and empty checksums.
	assert.Equal(t, "second", input[0].Forward[0].ID)
	assert.Equal(t, "first", input[0].Forward[1].ID)
	assert.Empty(t, input[0].Forward[0].Checksum)
	assert.Equal(t, "rb_b", input[0].Rollback[0].ID)
	assert.Empty(t, input[0].Rollback[0].Checksum)
}
