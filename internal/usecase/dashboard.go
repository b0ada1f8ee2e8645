package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"MacroPull/internal/domain/models"
	"MacroPull/internal/domain/registry"
	drepo "MacroPull/internal/domain/repository"
)

// Chart framing around the event marker.
const (
	chartMargin  = 15 * time.Minute
	chartPadding = 0.15
	chartBefore  = time.Hour
)

// Dashboard derives the chart and table views shown for a selected event.
type Dashboard struct {
	reactions *ReactionAggregator
	prices    drepo.PriceFetcher
}

func NewDashboard(reactions *ReactionAggregator, prices drepo.PriceFetcher) *Dashboard {
	return &Dashboard{reactions: reactions, prices: prices}
}

// Summary computes the reaction for eventTime and every view derived from it.
// Summaries are not archived; /api/reactions records the snapshot.
func (d *Dashboard) Summary(ctx context.Context, eventTime time.Time, horizon string) models.ReactionSummary {
	report := d.reactions.Compute(ctx, eventTime)
	return models.ReactionSummary{
		EventTime:  eventTime,
		Quick:      QuickMetrics(report.Rows, horizon),
		Categories: CategoryPerformance(report.Rows, horizon),
		Horizon:    horizon,
		Heatmap:    BuildHeatmap(report.Rows),
		Skipped:    report.Skipped,
	}
}

// QuickMetrics picks the headline tickers out of rows. A ticker without a
// row or without the horizon has a nil value.
func QuickMetrics(rows []models.ReactionRow, horizon string) []models.QuickMetric {
	byTicker := make(map[string]models.ReactionRow, len(rows))
	for _, r := range rows {
		byTicker[r.Ticker] = r
	}
	qm := registry.QuickMetrics()
	out := make([]models.QuickMetric, 0, len(qm))
	for _, q := range qm {
		m := models.QuickMetric{Ticker: q.Ticker, Label: q.Label}
		if r, ok := byTicker[q.Ticker]; ok {
			if v, ok := r.Returns[horizon]; ok {
				m.Value = &v
			}
		}
		out = append(out, m)
	}
	return out
}

// CategoryPerformance averages the horizon return per category over the
// rows that have it. Categories come back sorted by name.
func CategoryPerformance(rows []models.ReactionRow, horizon string) []models.CategoryAverage {
	sums := map[models.Category]float64{}
	counts := map[models.Category]int{}
	for _, r := range rows {
		v, ok := r.Returns[horizon]
		if !ok {
			continue
		}
		sums[r.Category] += v
		counts[r.Category]++
	}
	out := make([]models.CategoryAverage, 0, len(counts))
	for c, n := range counts {
		out = append(out, models.CategoryAverage{Category: c, Average: sums[c] / float64(n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// BuildHeatmap lays rows out as display name x horizon. Only horizons present
// in at least one row become columns.
func BuildHeatmap(rows []models.ReactionRow) models.Heatmap {
	var cols []string
	for _, h := range models.Horizons {
		for _, r := range rows {
			if _, ok := r.Returns[h.Label]; ok {
				cols = append(cols, h.Label)
				break
			}
		}
	}
	hm := models.Heatmap{
		Rows:    make([]string, 0, len(rows)),
		Columns: cols,
		Cells:   make([][]*float64, 0, len(rows)),
	}
	if hm.Columns == nil {
		hm.Columns = []string{}
	}
	for _, r := range rows {
		hm.Rows = append(hm.Rows, r.Name)
		line := make([]*float64, len(cols))
		for j, c := range cols {
			if v, ok := r.Returns[c]; ok {
				line[j] = &v
			}
		}
		hm.Cells = append(hm.Cells, line)
	}
	return hm
}

// PriceAction fetches bars for ticker and frames them for a candlestick chart
// of the given horizon.
func (d *Dashboard) PriceAction(ctx context.Context, ticker string, eventTime time.Time, horizon string) (models.PriceAction, error) {
	h, ok := models.HorizonByLabel(horizon)
	if !ok {
		return models.PriceAction{}, models.ErrNotFound
	}
	hoursAfter := max(1, h.Minutes/60+1)

	bars, err := d.prices.FetchIntraday(ctx, ticker, eventTime, chartBefore, time.Duration(hoursAfter)*time.Hour)
	if err != nil {
		return models.PriceAction{}, err
	}
	if len(bars) == 0 {
		return models.PriceAction{}, models.ErrNoData
	}
	return FramePriceAction(ticker, eventTime, h, bars), nil
}

// FramePriceAction computes the visible range and padded y-axis for bars.
func FramePriceAction(ticker string, eventTime time.Time, h models.Horizon, bars []models.PriceBar) models.PriceAction {
	pa := models.PriceAction{
		Ticker:      ticker,
		EventTime:   eventTime,
		Bars:        bars,
		RangeStart:  eventTime.Add(-chartMargin),
		RangeEnd:    eventTime.Add(h.Duration() + chartMargin),
		EventMarker: eventTime,
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		if b.Timestamp.Before(pa.RangeStart) || b.Timestamp.After(pa.RangeEnd) {
			continue
		}
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
	}
	if !math.IsInf(lo, 0) {
		pad := (hi - lo) * chartPadding
		pa.YMin, pa.YMax = lo-pad, hi+pad
	}
	return pa
}
