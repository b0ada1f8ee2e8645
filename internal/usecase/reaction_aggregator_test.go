package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroPull/internal/domain/models"
	"MacroPull/internal/domain/registry"
	"MacroPull/internal/services/returns"
	"MacroPull/pkg/logger"
)

type fakePrices struct {
	bars   map[string][]models.PriceBar
	errs   map[string]error
	delay  time.Duration
	active atomic.Int32
	peak   atomic.Int32
	mu     sync.Mutex
	calls  []string
}

func (f *fakePrices) FetchIntraday(_ context.Context, symbol string, _ time.Time, _, _ time.Duration) ([]models.PriceBar, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.bars[symbol], nil
}

func spikeBars(eventTime time.Time, base, moved float64) []models.PriceBar {
	var bars []models.PriceBar
	for t := eventTime.Add(-time.Hour); !t.After(eventTime.Add(2 * time.Hour)); t = t.Add(time.Minute) {
		c := base
		if t.After(eventTime) {
			c = moved
		}
		bars = append(bars, models.PriceBar{Timestamp: t, Open: c, High: c + 0.5, Low: c - 0.5, Close: c})
	}
	return bars
}

func newTestAggregator(p *fakePrices, m *fakeMetrics, workers int, archiver *ReactionArchiver) *ReactionAggregator {
	return NewReactionAggregator(p, returns.New(ny), archiver, m, logger.Nop(), ReactionConfig{Workers: workers})
}

func TestReactionAllFetchesFail(t *testing.T) {
	p := &fakePrices{errs: map[string]error{}}
	for _, a := range registry.Assets() {
		p.errs[a.Ticker] = errors.New("timeout")
	}
	m := newFakeMetrics()
	agg := newTestAggregator(p, m, 4, nil)

	report := agg.Report(context.Background(), time.Date(2025, 1, 10, 8, 30, 0, 0, ny), "")
	assert.NotNil(t, report.Rows)
	assert.Empty(t, report.Rows)
	assert.Len(t, report.Skipped, len(registry.Assets()))
	assert.Equal(t, len(registry.Assets()), m.skips["asset/"+models.SkipFetchFailed])
}

func TestReactionKeepsUniverseOrderAndOmitsFailures(t *testing.T) {
	event := time.Date(2025, 1, 10, 8, 30, 0, 0, ny)
	p := &fakePrices{
		bars: map[string][]models.PriceBar{
			"SPY":  spikeBars(event, 100, 101),
			"^VIX": spikeBars(event, 20, 18),
			"GC=F": spikeBars(event, 2000, 2010),
			"TLT":  {},
		},
		errs:  map[string]error{"QQQ": errors.New("status 429")},
		delay: 2 * time.Millisecond,
	}
	agg := newTestAggregator(p, newFakeMetrics(), 3, nil)

	report := agg.Report(context.Background(), event, "CPI")
	require.Len(t, report.Rows, 3)
	assert.Equal(t, "SPY", report.Rows[0].Ticker)
	assert.Equal(t, "GC=F", report.Rows[1].Ticker)
	assert.Equal(t, "^VIX", report.Rows[2].Ticker)
	assert.InDelta(t, 1.0, report.Rows[0].Returns["5m"], 1e-9)
	assert.InDelta(t, -10.0, report.Rows[2].Returns["1m"], 1e-9)
	assert.Equal(t, models.CategoryVolatility, report.Rows[2].Category)

	reasons := map[string]string{}
	for _, s := range report.Skipped {
		reasons[s.Ticker] = s.Reason.Code
	}
	assert.Equal(t, models.SkipFetchFailed, reasons["QQQ"])
	assert.Equal(t, models.SkipNoData, reasons["TLT"])
	assert.LessOrEqual(t, len(report.Rows)+len(report.Skipped), len(registry.Assets()))
	assert.LessOrEqual(t, p.peak.Load(), int32(3))
}

func TestReactionStreamDeliversEveryAsset(t *testing.T) {
	event := time.Date(2025, 1, 10, 8, 30, 0, 0, ny)
	p := &fakePrices{bars: map[string][]models.PriceBar{"SPY": spikeBars(event, 100, 102)}}
	agg := newTestAggregator(p, newFakeMetrics(), 4, nil)

	seen := map[string]bool{}
	var rows int
	for o := range agg.Stream(context.Background(), event) {
		seen[o.Asset.Ticker] = true
		if o.Skip == nil {
			rows++
		}
	}
	assert.Len(t, seen, len(registry.Assets()))
	assert.Equal(t, 1, rows)
}

func TestReactionStreamStopsOnCancel(t *testing.T) {
	event := time.Date(2025, 1, 10, 8, 30, 0, 0, ny)
	p := &fakePrices{delay: 5 * time.Millisecond}
	agg := newTestAggregator(p, newFakeMetrics(), 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := agg.Stream(ctx, event)
	<-ch
	cancel()
	for range ch {
	}
	assert.Less(t, len(p.calls), len(registry.Assets()))
}

func TestAssetReturns(t *testing.T) {
	event := time.Date(2025, 1, 10, 8, 30, 0, 0, ny)
	p := &fakePrices{bars: map[string][]models.PriceBar{"SPY": spikeBars(event, 100, 99)}}
	agg := newTestAggregator(p, newFakeMetrics(), 2, nil)

	o, err := agg.AssetReturns(context.Background(), "SPY", event)
	require.NoError(t, err)
	assert.Nil(t, o.Skip)
	assert.InDelta(t, -1.0, o.Returns["60m"], 1e-9)

	_, err = agg.AssetReturns(context.Background(), "AAPL", event)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
