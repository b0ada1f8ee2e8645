package util

import (
	"strconv"
	"time"
	_ "time/tzdata"
)

// DefaultVenue is the exchange timezone all event and bar times are expressed in.
const DefaultVenue = "America/New_York"

// LoadVenue loads a timezone by name, falling back to DefaultVenue when name is empty.
func LoadVenue(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultVenue
	}
	return time.LoadLocation(name)
}

// MustVenue is LoadVenue for static setup.
func MustVenue(name string) *time.Location {
	loc, err := LoadVenue(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseVenueTime is ParseTime plus offset-less layouts, which are read as
// wall-clock time in loc. The result is always expressed in loc.
func ParseVenueTime(s string, loc *time.Location) (time.Time, bool) {
	if t, ok := ParseTime(s); ok {
		return t.In(loc), true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// IsDateOnly reports whether s is a bare calendar date.
func IsDateOnly(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
