package models

import "time"

// ReactionSnapshot is an archived reaction computation.
type ReactionSnapshot struct {
	ID         string        `json:"id"`
	EventTime  time.Time     `json:"event_time"`
	EventName  string        `json:"event_name,omitempty"`
	ComputedAt time.Time     `json:"computed_at"`
	Rows       []ReactionRow `json:"rows"`
}

// ArchivedReturn is one (snapshot, ticker, horizon) row in the archive store.
type ArchivedReturn struct {
	SnapshotID string    `json:"snapshot_id"`
	EventTime  time.Time `json:"event_time"`
	EventName  string    `json:"event_name"`
	Ticker     string    `json:"ticker"`
	Name       string    `json:"name"`
	Category   Category  `json:"category"`
	Horizon    string    `json:"horizon"`
	ReturnPct  float64   `json:"return_pct"`
	ComputedAt time.Time `json:"computed_at"`
}

// Flatten expands a snapshot into archive rows.
func (s ReactionSnapshot) Flatten() []ArchivedReturn {
	var out []ArchivedReturn
	for _, row := range s.Rows {
		for _, h := range Horizons {
			v, ok := row.Returns[h.Label]
			if !ok {
				continue
			}
			out = append(out, ArchivedReturn{
				SnapshotID: s.ID,
				EventTime:  s.EventTime,
				EventName:  s.EventName,
				Ticker:     row.Ticker,
				Name:       row.Name,
				Category:   row.Category,
				Horizon:    h.Label,
				ReturnPct:  v,
				ComputedAt: s.ComputedAt,
			})
		}
	}
	return out
}

// HistoryQuery filters archived reactions.
type HistoryQuery struct {
	Ticker string
	From   time.Time
	To     time.Time
	Limit  int
}
