package models

// Requests for the dashboard HTTP endpoints. Times are RFC3339, or
// "2006-01-02 15:04[:05]" / "2006-01-02" read as venue-local.

type EventsRequest struct {
	Start string   `query:"start" json:"start"`
	End   string   `query:"end" json:"end"`
	Types []string `query:"type" json:"types"`
	Limit int      `query:"limit" json:"limit" validate:"gte=0,lte=5000"`
}

type LatestEventsRequest struct {
	N int `query:"n" json:"n" default:"10" validate:"gte=1,lte=500"`
}

type AssetsRequest struct {
	Category string `query:"category" json:"category" validate:"omitempty,oneof='Equities' 'Fixed Income' 'Currencies' 'Commodities' 'Volatility'"`
}

type ReturnsRequest struct {
	Ticker    string `query:"ticker" json:"ticker" validate:"required"`
	EventTime string `query:"event_time" json:"event_time" validate:"required"`
}

type ReactionsRequest struct {
	EventTime string `query:"event_time" json:"event_time" validate:"required"`
}

type SummaryRequest struct {
	EventTime string `query:"event_time" json:"event_time" validate:"required"`
	Horizon   string `query:"horizon" json:"horizon" default:"5m" validate:"oneof=1m 5m 15m 30m 60m 240m"`
}

type PriceActionRequest struct {
	Ticker    string `query:"ticker" json:"ticker" validate:"required"`
	EventTime string `query:"event_time" json:"event_time" validate:"required"`
	Horizon   string `query:"horizon" json:"horizon" default:"5m" validate:"oneof=1m 5m 15m 30m 60m 240m"`
}

type HistoryRequest struct {
	Ticker string `query:"ticker" json:"ticker"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}
