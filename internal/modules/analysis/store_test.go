package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStore(t *testing.T) {
	store := NewReportStore(time.Hour)

	_, ok := store.Latest()
	assert.False(t, ok)

	first := &Report{ID: "a"}
	second := &Report{ID: "b"}
	store.Put(first)
	store.Put(second)

	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Same(t, first, got)

	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Same(t, second, latest)

	_, ok = store.Get("latest")
	assert.False(t, ok)
	_, ok = store.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, store.Count())
}
