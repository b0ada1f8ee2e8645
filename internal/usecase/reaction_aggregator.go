package usecase

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"MacroPull/internal/domain/models"
	"MacroPull/internal/domain/registry"
	drepo "MacroPull/internal/domain/repository"
	dsvc "MacroPull/internal/domain/service"
	"MacroPull/pkg/logger"
)

// ReactionConfig sets the fetch window and fan-out width.
type ReactionConfig struct {
	Workers int
	Before  time.Duration
	After   time.Duration
}

// ReactionAggregator measures how every asset in the universe moved around an event.
type ReactionAggregator struct {
	prices   drepo.PriceFetcher
	calc     dsvc.ReturnCalculator
	archiver *ReactionArchiver
	metrics  drepo.Metrics
	log      *logger.Logger
	cfg      ReactionConfig
	assets   []models.Asset
}

func NewReactionAggregator(
	prices drepo.PriceFetcher,
	calc dsvc.ReturnCalculator,
	archiver *ReactionArchiver,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg ReactionConfig,
) *ReactionAggregator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Before <= 0 {
		cfg.Before = time.Hour
	}
	if cfg.After <= 0 {
		cfg.After = 2 * time.Hour
	}
	return &ReactionAggregator{
		prices:   prices,
		calc:     calc,
		archiver: archiver,
		metrics:  metrics,
		log:      log.Component("reactions"),
		cfg:      cfg,
		assets:   registry.Assets(),
	}
}

// MultiAssetReaction returns one row per asset with usable returns, in
// universe order. Assets that failed are omitted.
func (a *ReactionAggregator) MultiAssetReaction(ctx context.Context, eventTime time.Time) []models.ReactionRow {
	return a.Compute(ctx, eventTime).Rows
}

// Report is Compute plus archiving when an archiver is configured.
func (a *ReactionAggregator) Report(ctx context.Context, eventTime time.Time, eventName string) models.ReactionReport {
	report := a.Compute(ctx, eventTime)
	if a.archiver != nil && len(report.Rows) > 0 {
		a.archiver.Record(ctx, eventTime, eventName, report.Rows)
	}
	return report
}

// Compute returns rows for every asset plus the reasons others were skipped.
func (a *ReactionAggregator) Compute(ctx context.Context, eventTime time.Time) models.ReactionReport {
	start := time.Now()
	outcomes := a.Outcomes(ctx, eventTime)

	report := models.ReactionReport{
		EventTime: eventTime,
		Rows:      make([]models.ReactionRow, 0, len(outcomes)),
		Skipped:   []models.SkippedAsset{},
	}
	for _, o := range outcomes {
		if o.Skip != nil {
			report.Skipped = append(report.Skipped, models.SkippedAsset{Ticker: o.Asset.Ticker, Reason: *o.Skip})
			continue
		}
		report.Rows = append(report.Rows, rowOf(o))
	}
	a.metrics.RecordLatency("reaction", time.Since(start).Seconds())
	a.log.Info("reaction computed",
		logger.Time("event_time", eventTime),
		logger.Int("rows", len(report.Rows)),
		logger.Int("skipped", len(report.Skipped)),
		logger.Duration("duration_ms", time.Since(start)))
	return report
}

// Outcomes fetches every asset concurrently, bounded by Workers. The result
// is indexed like the universe.
func (a *ReactionAggregator) Outcomes(ctx context.Context, eventTime time.Time) []models.AssetOutcome {
	out := make([]models.AssetOutcome, len(a.assets))
	var g errgroup.Group
	g.SetLimit(a.cfg.Workers)
	for i, asset := range a.assets {
		g.Go(func() error {
			out[i] = a.assetOutcome(ctx, asset, eventTime)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Stream emits outcomes as each asset completes. The channel is closed after
// the last asset or when ctx is done.
func (a *ReactionAggregator) Stream(ctx context.Context, eventTime time.Time) <-chan models.AssetOutcome {
	ch := make(chan models.AssetOutcome)
	go func() {
		defer close(ch)
		var g errgroup.Group
		g.SetLimit(a.cfg.Workers)
		for _, asset := range a.assets {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				o := a.assetOutcome(ctx, asset, eventTime)
				select {
				case ch <- o:
				case <-ctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
	return ch
}

// AssetReturns computes the return set for a single ticker from the universe.
func (a *ReactionAggregator) AssetReturns(ctx context.Context, ticker string, eventTime time.Time) (models.AssetOutcome, error) {
	asset, ok := registry.Asset(ticker)
	if !ok {
		return models.AssetOutcome{}, models.ErrNotFound
	}
	return a.assetOutcome(ctx, asset, eventTime), nil
}

func (a *ReactionAggregator) assetOutcome(ctx context.Context, asset models.Asset, eventTime time.Time) models.AssetOutcome {
	o := models.AssetOutcome{Asset: asset}

	bars, err := a.prices.FetchIntraday(ctx, asset.Ticker, eventTime, a.cfg.Before, a.cfg.After)
	switch {
	case errors.Is(err, models.ErrNoData) || (err == nil && len(bars) == 0):
		o.Skip = &models.SkipReason{Code: models.SkipNoData}
	case err != nil:
		o.Skip = &models.SkipReason{Code: models.SkipFetchFailed, Detail: err.Error()}
	default:
		o.Returns = a.calc.Compute(bars, eventTime)
		if len(o.Returns) == 0 {
			o.Skip = &models.SkipReason{Code: models.SkipNoReturns}
		}
	}

	if o.Skip != nil {
		o.Returns = nil
		a.metrics.RecordSkip("asset", o.Skip.Code)
		a.log.Warn("asset skipped",
			logger.String("ticker", asset.Ticker),
			logger.String("reason", o.Skip.Code),
			logger.String("detail", o.Skip.Detail))
	}
	return o
}

func rowOf(o models.AssetOutcome) models.ReactionRow {
	return models.ReactionRow{
		Ticker:   o.Asset.Ticker,
		Name:     o.Asset.Name,
		Category: o.Asset.Category,
		Returns:  o.Returns,
	}
}
