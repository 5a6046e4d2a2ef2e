package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeScripts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{name: "nil encodes as empty list", input: nil, expected: "[]"},
		{name: "empty list", input: []string{}, expected: "[]"},
		{name: "ordered ids", input: []string{"v1_a", "v1_b", "v11_a"}, expected: `["v1_a","v1_b","v11_a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := encodeScripts(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeScripts_roundTrip(t *testing.T) {
	t.Parallel()

	in := []string{"v1_users", "v1_posts", "v11_email"}

	serialized, err := encodeScripts(in)
	require.NoError(t, err)

	out, err := decodeScripts(serialized)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeScripts_rejectsMalformed(t *testing.T) {
	t.Parallel()

	_, err := decodeScripts("{not a list}")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestDecodeScripts_emptyString(t *testing.T) {
	t.Parallel()

	out, err := decodeScripts("")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestStatusAndOperationConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UPGRADE", OpUpgrade)
	assert.Equal(t, "DOWNGRADE", OpDowngrade)
	assert.Equal(t, "ROLLBACK", OpRollback)

	assert.Equal(t, "STARTED", StatusStarted)
	assert.Equal(t, "SUCCESS", StatusSuccess)
	assert.Equal(t, "FAILED", StatusFailed)
	assert.Equal(t, "ROLLED_BACK", StatusRolledBack)
}
