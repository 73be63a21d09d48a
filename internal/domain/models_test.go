package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestValidation(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ecc   ECLevel
		size  int
		ok    bool
	}{
		{"defaults", "Hello world!", ECLevelL, 4, true},
		{"min size", "x", ECLevelH, 1, true},
		{"max size", "x", ECLevelQ, 10, true},
		{"size zero", "x", ECLevelL, 0, false},
		{"size eleven", "x", ECLevelL, 11, false},
		{"bad ecc", "x", "X", 4, false},
		{"lowercase ecc", "x", "l", 4, false},
		{"empty value", "", ECLevelL, 4, false},
		{"whitespace value", " \t\n ", ECLevelL, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRequest(tt.value, tt.ecc, tt.size)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
			assert.Equal(t, "invalid_request", ErrorKind(err))
		})
	}
}

func TestNewRequestTrimsValue(t *testing.T) {
	r, err := NewRequest("  hi  ", ECLevelM, 3)
	require.NoError(t, err)
	assert.Equal(t, "hi", r.Value)
	assert.Equal(t, DeriveKey("hi", ECLevelM, 3), r.Key())
}

func TestParseECLevel(t *testing.T) {
	l, err := ParseECLevel("")
	require.NoError(t, err)
	assert.Equal(t, ECLevelL, l)

	l, err = ParseECLevel("Q")
	require.NoError(t, err)
	assert.Equal(t, ECLevelQ, l)

	_, err = ParseECLevel("Z")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCacheEntryRecord(t *testing.T) {
	req := Request{Value: "abc", ECC: ECLevelL, Size: 4}
	e := NewCacheEntry(req, ArtifactRecord{URL: "/qr/v1.png", Width: 10, Height: 10})

	rec, ok := e.Record(req)
	require.True(t, ok)
	assert.Equal(t, "/qr/v1.png", rec.URL)

	_, ok = e.Record(Request{Value: "abd", ECC: ECLevelL, Size: 4})
	assert.False(t, ok, "stored value must match requested value")

	e.Width = 0
	_, ok = e.Record(req)
	assert.False(t, ok, "entry with zero width is not a valid hit")
}
