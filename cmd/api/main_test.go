package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryDate(t *testing.T) {
	t.Run("empty means now", func(t *testing.T) {
		ts, err := parseEntryDate("")
		require.NoError(t, err)
		assert.True(t, ts.IsZero())
	})

	t.Run("rfc3339 passes through", func(t *testing.T) {
		ts, err := parseEntryDate("2026-08-12T09:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC), ts)
	})

	t.Run("bare date keeps the current clock time", func(t *testing.T) {
		ts, err := parseEntryDate("2026-08-12")
		require.NoError(t, err)
		assert.Equal(t, 2026, ts.Year())
		assert.Equal(t, time.August, ts.Month())
		assert.Equal(t, 12, ts.Day())
		now := time.Now().UTC()
		assert.InDelta(t, now.Hour()*60+now.Minute(), ts.Hour()*60+ts.Minute(), 2)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := parseEntryDate("last tuesday")
		assert.Error(t, err)
	})
}
