package models

import "time"

// QuickMetric is the headline move of one tracked ticker at the selected
// horizon. Value is nil when the ticker had data but not at that horizon.
type QuickMetric struct {
	Ticker string   `json:"ticker"`
	Label  string   `json:"label"`
	Value  *float64 `json:"value"`
}

// CategoryAverage is the mean return of one category at one horizon.
type CategoryAverage struct {
	Category Category `json:"category"`
	Average  float64  `json:"average"`
}

// Heatmap is a ticker x horizon matrix. Cells without data are nil.
type Heatmap struct {
	Rows    []string     `json:"rows"`
	Columns []string     `json:"columns"`
	Cells   [][]*float64 `json:"cells"`
}

// PriceAction is the chart-ready view of bars around an event.
type PriceAction struct {
	Ticker      string     `json:"ticker"`
	EventTime   time.Time  `json:"event_time"`
	Bars        []PriceBar `json:"bars"`
	RangeStart  time.Time  `json:"range_start"`
	RangeEnd    time.Time  `json:"range_end"`
	YMin        float64    `json:"y_min"`
	YMax        float64    `json:"y_max"`
	EventMarker time.Time  `json:"event_marker"`
}

// ReactionSummary bundles the dashboard views derived from one report.
type ReactionSummary struct {
	EventTime  time.Time         `json:"event_time"`
	Quick      []QuickMetric     `json:"quick_metrics"`
	Categories []CategoryAverage `json:"category_performance"`
	Horizon    string            `json:"horizon"`
	Heatmap    Heatmap           `json:"heatmap"`
	Skipped    []SkippedAsset    `json:"skipped"`
}
