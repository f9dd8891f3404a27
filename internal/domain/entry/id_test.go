package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "01J1M8Z6Y1Y1Y1Y1Y1Y1Y1Y1Y1"},
		{name: "min", input: "00000000000000000000000000"},
		{name: "max", input: "7ZZZZZZZZZZZZZZZZZZZZZZZZZ"},
		{name: "too short", input: "01J1M8Z6Y1", wantErr: true},
		{name: "overflow", input: "8ZZZZZZZZZZZZZZZZZZZZZZZZZ", wantErr: true},
		{name: "invalid characters", input: "01J1M8Z6Y1Y1Y1Y1Y1Y1Y1Y1YU", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestID_Bounds(t *testing.T) {
	assert.Equal(t, "00000000000000000000000000", MinID().String())
	assert.Equal(t, "7ZZZZZZZZZZZZZZZZZZZZZZZZZ", MaxID().String())

	id := NewID()
	assert.Equal(t, 1, id.Compare(MinID()))
	assert.Equal(t, -1, id.Compare(MaxID()))
	assert.False(t, id.IsZero())
	assert.True(t, MinID().IsZero())
}

func TestID_BinaryRoundTrip(t *testing.T) {
	id := NewID()

	b := id.Bytes()
	require.Len(t, b, IDSize)

	decoded, err := IDFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, id, decoded)

	_, err = IDFromBytes(b[:10])
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestNewID_Monotonic(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		next := NewID()
		assert.Equal(t, 1, next.Compare(prev))
		prev = next
	}
}
