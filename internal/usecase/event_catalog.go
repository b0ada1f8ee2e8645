package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"MacroPull/internal/domain/models"
	"MacroPull/internal/domain/registry"
	drepo "MacroPull/internal/domain/repository"
	dsvc "MacroPull/internal/domain/service"
	"MacroPull/pkg/logger"
	"MacroPull/pkg/util"
)

// forecastJitter is the relative width of the randomized forecast proxy.
const forecastJitter = 0.1

// EventCatalogConfig tunes the event catalog.
type EventCatalogConfig struct {
	CacheTTL         time.Duration
	ObservationLimit int
	MaxPerIndicator  int
	SyntheticMonths  int
	Location         *time.Location
}

// CatalogOption configures an EventCatalog.
type CatalogOption func(*EventCatalog)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CatalogOption {
	return func(c *EventCatalog) { c.now = now }
}

// WithRand fixes the random source used for forecasts and synthetic values.
func WithRand(rng *rand.Rand) CatalogOption {
	return func(c *EventCatalog) { c.rng = rng }
}

// cacheState is the outcome of the refresh-or-serve decision.
type cacheState int

const (
	cacheStale cacheState = iota
	cacheFresh
)

// eventCache is the full materialized event set plus its age.
type eventCache struct {
	events      []models.Event
	lastRefresh time.Time
	ttl         time.Duration
	live        bool
	outcomes    []models.IndicatorOutcome
}

func (c *eventCache) state(now time.Time) cacheState {
	if c.lastRefresh.IsZero() || now.Sub(c.lastRefresh) >= c.ttl {
		return cacheStale
	}
	return cacheFresh
}

// EventCatalog owns the macro event set: it builds it from the economic data
// source when a credential is configured, falls back to synthetic events
// otherwise, and serves it from a time-bounded cache.
type EventCatalog struct {
	source      drepo.EconomicSource
	transformer dsvc.Transformer
	metrics     drepo.Metrics
	log         *logger.Logger
	cfg         EventCatalogConfig
	indicators  []models.IndicatorDefinition

	now func() time.Time
	rng *rand.Rand

	mu    sync.Mutex
	cache eventCache
	synth *SyntheticGenerator
}

// NewEventCatalog builds a catalog. A nil source means synthetic mode.
func NewEventCatalog(
	source drepo.EconomicSource,
	transformer dsvc.Transformer,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg EventCatalogConfig,
	opts ...CatalogOption,
) *EventCatalog {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.ObservationLimit <= 0 {
		cfg.ObservationLimit = 24
	}
	if cfg.MaxPerIndicator <= 0 {
		cfg.MaxPerIndicator = 12
	}
	c := &EventCatalog{
		source:      source,
		transformer: transformer,
		metrics:     metrics,
		log:         log.Component("event_catalog"),
		cfg:         cfg,
		indicators:  registry.Indicators(),
		now:         time.Now,
		cache:       eventCache{ttl: cfg.CacheTTL},
	}
	for _, o := range opts {
		o(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(uint64(c.now().UnixNano()), 0x2545f4914f6cdd1d))
	}
	c.synth = NewSyntheticGenerator(cfg.SyntheticMonths, cfg.Location, c.rng)
	return c
}

// EventTypes returns the display names of the indicator registry.
func (c *EventCatalog) EventTypes() []string {
	return registry.IndicatorNames()
}

// Events returns the cached event set filtered by f, newest first.
func (c *EventCatalog) Events(ctx context.Context, f models.EventFilter) []models.Event {
	all := c.snapshot(ctx)

	var types map[string]bool
	if len(f.Types) > 0 {
		types = make(map[string]bool, len(f.Types))
		for _, t := range f.Types {
			types[t] = true
		}
	}
	out := make([]models.Event, 0, len(all))
	for _, e := range all {
		if f.Start != nil && e.DateTime.Before(*f.Start) {
			continue
		}
		if f.End != nil && e.DateTime.After(*f.End) {
			continue
		}
		if types != nil && !types[e.Name] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Latest returns the n most recent events.
func (c *EventCatalog) Latest(ctx context.Context, n int) []models.Event {
	all := c.Events(ctx, models.EventFilter{})
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// CacheInfo reports when the set was last rebuilt and whether it came from live data.
func (c *EventCatalog) CacheInfo() (lastRefresh time.Time, live bool, outcomes []models.IndicatorOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.lastRefresh, c.cache.live, slices.Clone(c.cache.outcomes)
}

// snapshot serves the cached set, rebuilding it first when stale. The lock
// covers check-then-rebuild so concurrent misses trigger one rebuild.
func (c *EventCatalog) snapshot(ctx context.Context) []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.cache.state(now) == cacheFresh {
		c.metrics.RecordCacheResult("events", true)
		return slices.Clone(c.cache.events)
	}
	c.metrics.RecordCacheResult("events", false)
	c.rebuild(context.WithoutCancel(ctx), now)
	return slices.Clone(c.cache.events)
}

func (c *EventCatalog) rebuild(ctx context.Context, now time.Time) {
	start := time.Now()

	var (
		events   []models.Event
		outcomes []models.IndicatorOutcome
	)
	if c.source != nil {
		outcomes = make([]models.IndicatorOutcome, 0, len(c.indicators))
		for _, def := range c.indicators {
			o := c.liveIndicator(ctx, def)
			if o.Skip != nil {
				c.metrics.RecordSkip("indicator", o.Skip.Code)
				c.log.Warn("indicator skipped",
					logger.String("indicator", def.Key),
					logger.String("series_id", def.SeriesID),
					logger.String("reason", o.Skip.Code),
					logger.String("detail", o.Skip.Detail))
			}
			outcomes = append(outcomes, o)
			events = append(events, o.Events...)
		}
	}

	live := len(events) > 0
	if !live {
		events = c.synth.Generate(now)
	}
	for i := range events {
		annotateSurprise(&events[i])
	}
	sortEvents(events)

	c.cache = eventCache{
		events:      events,
		lastRefresh: now,
		ttl:         c.cfg.CacheTTL,
		live:        live,
		outcomes:    outcomes,
	}

	mode := string(models.SourceSynthetic)
	if live {
		mode = string(models.SourceLive)
	}
	c.metrics.RecordEventsRefresh(live, len(events))
	c.metrics.RecordLatency("events_rebuild", time.Since(start).Seconds())
	c.log.Info("event set rebuilt",
		logger.String("mode", mode),
		logger.Int("events", len(events)),
		logger.Duration("duration_ms", time.Since(start)))
}

// liveIndicator runs fetch, transform and materialization for one indicator.
func (c *EventCatalog) liveIndicator(ctx context.Context, def models.IndicatorDefinition) models.IndicatorOutcome {
	out := models.IndicatorOutcome{Key: def.Key}

	obs, err := c.source.FetchObservations(ctx, def.SeriesID, c.cfg.ObservationLimit)
	if err != nil {
		code := models.SkipFetchFailed
		if errors.Is(err, models.ErrNoData) {
			code = models.SkipNoData
		}
		out.Skip = &models.SkipReason{Code: code, Detail: err.Error()}
		return out
	}
	if len(obs) == 0 {
		out.Skip = &models.SkipReason{Code: models.SkipNoData}
		return out
	}

	derived, err := c.transformer.Apply(def.Transform, obs)
	if err != nil {
		out.Skip = &models.SkipReason{Code: models.SkipFetchFailed, Detail: err.Error()}
		return out
	}
	if len(derived) < 2 {
		out.Skip = &models.SkipReason{
			Code:   models.SkipInsufficientHistory,
			Detail: fmt.Sprintf("%d derived points from %d observations", len(derived), len(obs)),
		}
		return out
	}

	slices.Reverse(derived)
	n := min(len(derived)-1, c.cfg.MaxPerIndicator)
	out.Events = make([]models.Event, 0, n)
	for i := 0; i < n; i++ {
		actual := util.Round2(derived[i].Value)
		previous := util.Round2(derived[i+1].Value)
		out.Events = append(out.Events, models.Event{
			DateTime:            def.ReleaseTime.On(derived[i].Date, c.cfg.Location),
			Name:                def.DisplayName,
			Actual:              actual,
			Forecast:            c.forecastProxy(actual, previous),
			Previous:            previous,
			ForecastIsSynthetic: true,
			Source:              models.SourceLive,
		})
	}
	return out
}

// forecastProxy perturbs actual by a random fraction of its distance from
// previous. It stands in for a consensus figure no provider supplies.
func (c *EventCatalog) forecastProxy(actual, previous float64) float64 {
	u := -forecastJitter + c.rng.Float64()*2*forecastJitter
	return util.Round2(actual + u*math.Abs(actual-previous+0.1))
}

// annotateSurprise fills surprise fields. Only Surprise is rounded; a zero
// forecast divides by 1.
func annotateSurprise(e *models.Event) {
	e.Surprise = util.Round2(e.Actual - e.Forecast)
	denom := math.Abs(e.Forecast)
	if denom == 0 {
		denom = 1
	}
	e.SurprisePct = (e.Actual - e.Forecast) / denom * 100
}

// sortEvents orders newest first, then by name for a stable listing.
func sortEvents(events []models.Event) {
	slices.SortStableFunc(events, func(a, b models.Event) int {
		if c := b.DateTime.Compare(a.DateTime); c != 0 {
			return c
		}
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
}
