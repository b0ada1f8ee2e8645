package models

import "time"

// EventSource tells where an event's numbers came from.
type EventSource string

const (
	SourceLive      EventSource = "live"
	SourceSynthetic EventSource = "synthetic"
)

// Event is one macro data release.
//
// ForecastIsSynthetic is always true today: live events carry a randomized
// proxy around the actual value, not a consensus survey figure.
type Event struct {
	DateTime            time.Time   `json:"datetime"`
	Name                string      `json:"event"`
	Actual              float64     `json:"actual"`
	Forecast            float64     `json:"forecast"`
	Previous            float64     `json:"previous"`
	Surprise            float64     `json:"surprise"`
	SurprisePct         float64     `json:"surprise_pct"`
	ForecastIsSynthetic bool        `json:"forecast_is_synthetic"`
	Source              EventSource `json:"source"`
}

// EventFilter narrows GetEvents. Zero values mean "no bound".
type EventFilter struct {
	Start *time.Time
	End   *time.Time
	Types []string
}
