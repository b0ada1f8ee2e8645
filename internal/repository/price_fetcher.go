package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"MacroPull/internal/domain/models"
	drepo "MacroPull/internal/domain/repository"
	"MacroPull/pkg/cache"
	"MacroPull/pkg/logger"
)

// MaxCacheTTL bounds how long fetched bars may be reused.
const MaxCacheTTL = time.Hour

// PriceFetcherConfig controls timeouts and caching.
type PriceFetcherConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	Location *time.Location
}

// PriceFetcher picks a bar interval from the event's age, falls back to
// recent 5m bars when the window is empty, and localizes to the venue.
type PriceFetcher struct {
	source  drepo.BarSource
	cache   cache.Service
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     PriceFetcherConfig
	group   singleflight.Group
	now     func() time.Time
}

// NewPriceFetcher builds a fetcher. store may be nil to disable caching.
func NewPriceFetcher(source drepo.BarSource, store cache.Service, metrics drepo.Metrics, log *logger.Logger, cfg PriceFetcherConfig) *PriceFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	cfg.CacheTTL = min(cfg.CacheTTL, MaxCacheTTL)
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &PriceFetcher{
		source:  source,
		cache:   store,
		metrics: metrics,
		log:     log.Component("prices"),
		cfg:     cfg,
		now:     time.Now,
	}
}

// FetchIntraday returns venue-local bars in [eventTime-before, eventTime+after]
// in ascending time order. An empty result is reported as models.ErrNoData.
func (f *PriceFetcher) FetchIntraday(ctx context.Context, symbol string, eventTime time.Time, before, after time.Duration) ([]models.PriceBar, error) {
	interval := drepo.SelectInterval(f.now(), eventTime)
	from, to := eventTime.Add(-before), eventTime.Add(after)
	key := cache.Key("bars", f.source.Name(), symbol, interval, from.Unix(), to.Unix())

	if f.cache != nil {
		var cached []models.PriceBar
		err := f.cache.Get(ctx, key, &cached)
		f.metrics.RecordCacheResult("bars", err == nil)
		if err == nil {
			return f.localize(cached), nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			f.log.Warn("bar cache read failed", logger.String("key", key), logger.Error(err))
		}
	}

	// The flight is shared, so it runs detached from the caller that started
	// it and is bounded by cfg.Timeout only. Each caller waits on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (interface{}, error) {
		bars, err := f.fetch(shared, symbol, from, to, interval)
		if err != nil {
			return nil, err
		}
		if f.cache != nil {
			if err := f.cache.Set(shared, key, bars, f.cfg.CacheTTL); err != nil {
				f.log.Warn("bar cache write failed", logger.String("key", key), logger.Error(err))
			}
		}
		return bars, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch %s: %w", symbol, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// callers sharing a flight must not share the slice
		return f.localize(res.Val.([]models.PriceBar)), nil
	}
}

func (f *PriceFetcher) fetch(ctx context.Context, symbol string, from, to time.Time, interval models.Interval) ([]models.PriceBar, error) {
	bars, err := f.call(ctx, "range", func(ctx context.Context) ([]models.PriceBar, error) {
		return f.source.FetchRange(ctx, symbol, from, to, interval)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if len(bars) > 0 {
		return sortBars(bars), nil
	}

	f.log.Debug("empty window, using recent bars",
		logger.String("ticker", symbol),
		logger.String("interval", string(interval)))
	bars, err = f.call(ctx, "recent", func(ctx context.Context) ([]models.PriceBar, error) {
		return f.source.FetchRecent(ctx, symbol, drepo.FallbackLookback, drepo.FallbackInterval)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch recent %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, models.ErrNoData
	}
	return sortBars(bars), nil
}

func (f *PriceFetcher) call(ctx context.Context, op string, fn func(context.Context) ([]models.PriceBar, error)) ([]models.PriceBar, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	start := time.Now()
	bars, err := fn(ctx)
	f.metrics.RecordLatency(f.source.Name()+"_"+op, time.Since(start).Seconds())
	switch {
	case err != nil:
		f.metrics.RecordProviderRequest(f.source.Name(), "error")
	case len(bars) == 0:
		f.metrics.RecordProviderRequest(f.source.Name(), "empty")
	default:
		f.metrics.RecordProviderRequest(f.source.Name(), "ok")
	}
	return bars, err
}

func (f *PriceFetcher) localize(bars []models.PriceBar) []models.PriceBar {
	out := make([]models.PriceBar, len(bars))
	for i, b := range bars {
		b.Timestamp = b.Timestamp.In(f.cfg.Location)
		out[i] = b
	}
	return out
}

func sortBars(bars []models.PriceBar) []models.PriceBar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars
}

var _ drepo.PriceFetcher = (*PriceFetcher)(nil)
