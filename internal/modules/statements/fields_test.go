package statements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"compact", "20240315", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), false},
		{"iso date", "2024-03-15", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), false},
		{"iso date-time", "2024-03-15T18:30:00-03:00", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), false},
		{"padded", "  20240315 ", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), false},
		{"invalid month", "20241315", time.Time{}, true},
		{"brazilian order", "15/03/2024", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatementDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestProduct(t *testing.T) {
	q, p := 100.0, 10.0
	got := product(&q, &p)
	require.NotNil(t, got)
	assert.Equal(t, 1000.0, *got)

	q, p = 3, 0.1
	got = product(&q, &p)
	require.NotNil(t, got)
	assert.Equal(t, 0.3, *got)

	assert.Nil(t, product(nil, &p))
	assert.Nil(t, product(&q, nil))
}
