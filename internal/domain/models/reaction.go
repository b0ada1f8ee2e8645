package models

import (
	"encoding/json"
	"time"
)

// Horizon is a fixed post-event measurement offset.
type Horizon struct {
	Label   string
	Minutes int
}

// Duration returns the horizon offset.
func (h Horizon) Duration() time.Duration { return time.Duration(h.Minutes) * time.Minute }

// Horizons lists the supported horizons in ascending order.
var Horizons = []Horizon{
	{Label: "1m", Minutes: 1},
	{Label: "5m", Minutes: 5},
	{Label: "15m", Minutes: 15},
	{Label: "30m", Minutes: 30},
	{Label: "60m", Minutes: 60},
	{Label: "240m", Minutes: 240},
}

// HorizonLabels returns the labels of Horizons in order.
func HorizonLabels() []string {
	out := make([]string, len(Horizons))
	for i, h := range Horizons {
		out[i] = h.Label
	}
	return out
}

// HorizonByLabel looks up a horizon by its label.
func HorizonByLabel(label string) (Horizon, bool) {
	for _, h := range Horizons {
		if h.Label == label {
			return h, true
		}
	}
	return Horizon{}, false
}

// MaxHorizon is the widest horizon in Horizons.
func MaxHorizon() Horizon { return Horizons[len(Horizons)-1] }

// ReturnSet maps a horizon label to a percent return. Missing horizons are absent.
type ReturnSet map[string]float64

// ReactionRow is one asset's returns around an event.
type ReactionRow struct {
	Ticker   string
	Name     string
	Category Category
	Returns  ReturnSet
}

// MarshalJSON flattens Returns next to the asset fields.
func (r ReactionRow) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Returns)+3)
	for k, v := range r.Returns {
		m[k] = v
	}
	m["ticker"] = r.Ticker
	m["name"] = r.Name
	m["category"] = r.Category
	return json.Marshal(m)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *ReactionRow) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = ReactionRow{Returns: ReturnSet{}}
	for k, v := range raw {
		var err error
		switch k {
		case "ticker":
			err = json.Unmarshal(v, &r.Ticker)
		case "name":
			err = json.Unmarshal(v, &r.Name)
		case "category":
			err = json.Unmarshal(v, &r.Category)
		default:
			if _, ok := HorizonByLabel(k); !ok {
				continue
			}
			var f float64
			err = json.Unmarshal(v, &f)
			r.Returns[k] = f
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Skip reason codes.
const (
	SkipFetchFailed         = "fetch_failed"
	SkipNoData              = "no_data"
	SkipInsufficientHistory = "insufficient_history"
	SkipNoReturns           = "no_returns"
)

// SkipReason explains why a unit of work produced no result.
type SkipReason struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// AssetOutcome is the per-asset result of a reaction computation.
type AssetOutcome struct {
	Asset   Asset
	Returns ReturnSet
	Skip    *SkipReason
}

// IndicatorOutcome is the per-indicator result of the live event pipeline.
type IndicatorOutcome struct {
	Key    string
	Events []Event
	Skip   *SkipReason
}

// SkippedAsset is reported alongside reaction rows.
type SkippedAsset struct {
	Ticker string     `json:"ticker"`
	Reason SkipReason `json:"reason"`
}

// ReactionReport is the full result for one event time.
type ReactionReport struct {
	EventTime time.Time      `json:"event_time"`
	Rows      []ReactionRow  `json:"rows"`
	Skipped   []SkippedAsset `json:"skipped"`
}
