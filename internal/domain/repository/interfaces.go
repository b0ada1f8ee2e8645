package repository

import (
	"context"
	"time"

	"MacroPull/internal/domain/models"
)

// EconomicSource returns historical observations for a macro series.
type EconomicSource interface {
	FetchObservations(ctx context.Context, seriesID string, limit int) ([]models.Observation, error)
}

// BarSource is a raw intraday market data provider.
type BarSource interface {
	Name() string
	// FetchRange returns bars in [from, to] at the given interval.
	FetchRange(ctx context.Context, symbol string, from, to time.Time, interval models.Interval) ([]models.PriceBar, error)
	// FetchRecent returns bars covering lookback up to now.
	FetchRecent(ctx context.Context, symbol string, lookback time.Duration, interval models.Interval) ([]models.PriceBar, error)
}

// PriceFetcher returns venue-local bars around an event.
type PriceFetcher interface {
	FetchIntraday(ctx context.Context, symbol string, eventTime time.Time, before, after time.Duration) ([]models.PriceBar, error)
}

// ReactionArchive persists computed reactions.
type ReactionArchive interface {
	Archive(ctx context.Context, snap models.ReactionSnapshot) error
	Close() error
}

// ReactionHistory reads archived reactions back.
type ReactionHistory interface {
	History(ctx context.Context, q models.HistoryQuery) ([]models.ArchivedReturn, error)
}

// ArchiveStore is the storage side of the archive.
type ArchiveStore interface {
	ReactionHistory
	Init(ctx context.Context) error
	StoreBatch(ctx context.Context, rows []models.ArchivedReturn) error
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordProviderRequest(provider, outcome string)
	RecordLatency(op string, seconds float64)
	RecordSkip(unit, code string)
	RecordCacheResult(cache string, hit bool)
	RecordEventsRefresh(live bool, count int)
	RecordArchived(backend string, rows int)
	RecordError(kind string)
}
