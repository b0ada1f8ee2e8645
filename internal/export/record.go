// Package export writes reaction rows to flat files.
package export

import (
	"time"

	"MacroPull/internal/domain/models"
)

// Record is one asset's reaction, flattened for file output. Horizons the
// asset could not be measured at are nil.
type Record struct {
	EventTime int64    `json:"event_time" parquet:"event_time"`
	EventName string   `json:"event_name" parquet:"event_name"`
	Ticker    string   `json:"ticker" parquet:"ticker"`
	Name      string   `json:"name" parquet:"name"`
	Category  string   `json:"category" parquet:"category"`
	R1m       *float64 `json:"1m" parquet:"r_1m,optional"`
	R5m       *float64 `json:"5m" parquet:"r_5m,optional"`
	R15m      *float64 `json:"15m" parquet:"r_15m,optional"`
	R30m      *float64 `json:"30m" parquet:"r_30m,optional"`
	R60m      *float64 `json:"60m" parquet:"r_60m,optional"`
	R240m     *float64 `json:"240m" parquet:"r_240m,optional"`
}

// Records flattens rows for an event. EventTime is epoch milliseconds.
func Records(eventTime time.Time, eventName string, rows []models.ReactionRow) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, Record{
			EventTime: eventTime.UnixMilli(),
			EventName: eventName,
			Ticker:    r.Ticker,
			Name:      r.Name,
			Category:  string(r.Category),
			R1m:       lookup(r.Returns, "1m"),
			R5m:       lookup(r.Returns, "5m"),
			R15m:      lookup(r.Returns, "15m"),
			R30m:      lookup(r.Returns, "30m"),
			R60m:      lookup(r.Returns, "60m"),
			R240m:     lookup(r.Returns, "240m"),
		})
	}
	return out
}

func lookup(rs models.ReturnSet, label string) *float64 {
	v, ok := rs[label]
	if !ok {
		return nil
	}
	return &v
}

// returns lists the horizon values of r in models.Horizons order.
func (r Record) returns() []*float64 {
	return []*float64{r.R1m, r.R5m, r.R15m, r.R30m, r.R60m, r.R240m}
}
