package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	require.True(t, ok)
	assert.Equal(t, s, got.UTC().Format(time.RFC3339))
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	require.True(t, ok)
	assert.Equal(t, ts, got.Unix())
}

func TestParseVenueTime(t *testing.T) {
	ny := MustVenue("")

	got, ok := ParseVenueTime("2025-03-12 08:30", ny)
	require.True(t, ok)
	assert.Equal(t, 8, got.Hour())
	assert.Equal(t, ny, got.Location())
	// EDT started on 2025-03-09.
	assert.Equal(t, 12, got.UTC().Hour())

	got, ok = ParseVenueTime("2025-01-10T13:30:00Z", ny)
	require.True(t, ok)
	assert.Equal(t, 8, got.Hour())

	got, ok = ParseVenueTime("2025-01-10", ny)
	require.True(t, ok)
	assert.Equal(t, 0, got.Hour())

	_, ok = ParseVenueTime("yesterday", ny)
	assert.False(t, ok)
}

func TestEndOfDay(t *testing.T) {
	ny := MustVenue("")
	d := time.Date(2025, 1, 10, 9, 0, 0, 0, ny)
	e := EndOfDay(d)
	assert.Equal(t, 10, e.Day())
	assert.Equal(t, 23, e.Hour())
	assert.True(t, e.Add(time.Nanosecond).Equal(time.Date(2025, 1, 11, 0, 0, 0, 0, ny)))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.35, Round2(2.345))
	assert.Equal(t, -1.24, Round2(-1.2351))
	assert.Equal(t, 0.0, Round2(0.001))
}
