package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSessionIdempotent(t *testing.T) {
	rt := DefaultRealTimeData("2026-08-31T09:00:00Z")

	first := rt.EnsureSession("2026-08-31", "09:05")
	first.RecordTotal(true)

	second := rt.EnsureSession("2026-08-31", "09:05")
	require.Same(t, first, second)
	assert.Equal(t, 1, second.TotalAttempts)
	assert.Equal(t, "2026-08-31_09:05", second.SessionID)
}

func TestSessionLookup(t *testing.T) {
	rt := DefaultRealTimeData("2026-08-31T09:00:00Z")
	assert.Nil(t, rt.Session("2026-08-31", "09:05"))

	rt.EnsureSession("2026-08-31", "09:05")
	assert.NotNil(t, rt.Session("2026-08-31", "09:05"))
	assert.Nil(t, rt.Session("2026-08-31", "10:00"))
}

func TestSessionIDSortsByRecency(t *testing.T) {
	// Zero-padded identifiers must order lexicographically by recency.
	older := SessionID("2026-08-31", "09:05")
	newer := SessionID("2026-08-31", "21:00")
	assert.Less(t, older, newer)

	prevDay := SessionID("2026-08-30", "23:59")
	nextDay := SessionID("2026-08-31", "00:00")
	assert.Less(t, prevDay, nextDay)
}

func TestDefaultRealTimeDataSeedsRegistry(t *testing.T) {
	rt := DefaultRealTimeData("2026-08-31T09:00:00Z")
	require.Len(t, rt.Categories, len(AllCategories))
	for _, key := range AllCategories {
		require.NotNil(t, rt.Categories[key])
	}
	assert.Equal(t, "2026-08-31T09:00:00Z", rt.SessionStart)
	assert.Nil(t, rt.CurrentSession)
}
