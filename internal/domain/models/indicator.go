package models

import (
	"fmt"
	"time"
)

// TransformKind selects how a raw provider series becomes the reported metric.
type TransformKind string

const (
	TransformLevel        TransformKind = "level"
	TransformPctChangeYoY TransformKind = "pct_change_yoy"
	TransformPctChangeMoM TransformKind = "pct_change_mom"
	TransformPctChangeQoQ TransformKind = "pct_change_qoq"
	TransformMoMChange    TransformKind = "mom_change"
	TransformPMIProxy     TransformKind = "pmi_proxy"
)

// Valid reports whether k is a known transform.
func (k TransformKind) Valid() bool {
	switch k {
	case TransformLevel, TransformPctChangeYoY, TransformPctChangeMoM,
		TransformPctChangeQoQ, TransformMoMChange, TransformPMIProxy:
		return true
	}
	return false
}

// ClockTime is a time of day without a date, e.g. a scheduled release time.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock parses "15:04" or "15:04:05".
func ParseClock(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
}

// MustParseClock is ParseClock for static tables.
func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// On returns the instant at this clock time on the calendar date of d, in loc.
func (c ClockTime) On(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, c.Second, 0, loc)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// IndicatorDefinition describes one macro series in the registry.
type IndicatorDefinition struct {
	Key         string
	SeriesID    string
	DisplayName string
	ReleaseTime ClockTime
	Transform   TransformKind
}

// Observation is one raw data point from the economic data provider.
type Observation struct {
	Date  time.Time
	Value float64
}

// DerivedObservation is an Observation after its transform was applied.
type DerivedObservation struct {
	Date  time.Time
	Raw   float64
	Value float64
}
