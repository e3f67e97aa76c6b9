package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"2048", 2048},
		{"100MB", 100 * 1000 * 1000},
		{"1.5GiB", 1610612736},
		{"500 KB", 500 * 1000},
	}
	for _, tt := range tests {
		n, err := Size(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, n, tt.in)
	}

	_, err := Size("lots")
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	d, err := Date("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)

	// A timestamped form normalizes to midnight of that day.
	d, err = Date("2026-03-15 18:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = Date("15/03/2026")
	assert.Error(t, err)
}
