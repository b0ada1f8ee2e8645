package api

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroPull/internal/domain/models"
	"MacroPull/internal/service/ratelimit"
	"MacroPull/internal/services/returns"
	"MacroPull/internal/services/transform"
	"MacroPull/internal/usecase"
	"MacroPull/pkg/logger"
	"MacroPull/pkg/metrics"
	"MacroPull/pkg/util"
)

var ny = util.MustVenue(util.DefaultVenue)

// eventAt is a weekday 08:30 release in venue time.
var eventAt = time.Date(2024, 6, 12, 8, 30, 0, 0, ny)

type stubPrices struct {
	bars map[string][]models.PriceBar
}

func (s stubPrices) FetchIntraday(_ context.Context, symbol string, _ time.Time, _, _ time.Duration) ([]models.PriceBar, error) {
	bars, ok := s.bars[symbol]
	if !ok {
		return nil, models.ErrNoData
	}
	return bars, nil
}

func stepBars(eventTime time.Time, base, moved float64) []models.PriceBar {
	var bars []models.PriceBar
	for t := eventTime.Add(-time.Hour); !t.After(eventTime.Add(2 * time.Hour)); t = t.Add(time.Minute) {
		c := base
		if t.After(eventTime) {
			c = moved
		}
		bars = append(bars, models.PriceBar{Timestamp: t, Open: c, High: c + 1, Low: c - 1, Close: c})
	}
	return bars
}

type harness struct {
	e *echo.Echo
	h *DashboardHandler
}

func newHarness(t *testing.T, opts ...HandlerOption) *harness {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	log := logger.Nop()
	prices := stubPrices{bars: map[string][]models.PriceBar{
		"SPY": stepBars(eventAt, 100, 101),
		"TLT": stepBars(eventAt, 90, 89.1),
	}}

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, ny)
	catalog := usecase.NewEventCatalog(nil, transform.New(), m, log, usecase.EventCatalogConfig{
		CacheTTL:         time.Hour,
		ObservationLimit: 24,
		MaxPerIndicator:  12,
		SyntheticMonths:  12,
		Location:         ny,
	}, usecase.WithClock(func() time.Time { return now }), usecase.WithRand(rand.New(rand.NewPCG(1, 2))))
	archiver := usecase.NewReactionArchiver(nil, nil, m, log, usecase.ArchiveNone)
	reactions := usecase.NewReactionAggregator(prices, returns.New(ny), archiver, m, log, usecase.ReactionConfig{Workers: 4})
	dashboard := usecase.NewDashboard(reactions, prices)

	h := NewDashboardHandler(log, catalog, reactions, dashboard, archiver, ny, opts...)
	h.now = func() time.Time { return now }
	e := echo.New()
	h.RegisterRoutes(e)
	return &harness{e: e, h: h}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (hs *harness) get(t *testing.T, path string, q url.Values) (int, envelope) {
	t.Helper()
	if q != nil {
		path += "?" + q.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	hs.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.Status)
	return rec.Code, env
}

func TestEventTypes(t *testing.T) {
	hs := newHarness(t)
	code, env := hs.get(t, "/api/event-types", nil)
	require.Equal(t, http.StatusOK, code)

	var names []string
	require.NoError(t, json.Unmarshal(env.Data, &names))
	assert.Len(t, names, 10)
}

func TestEventsFilterAndLimit(t *testing.T) {
	hs := newHarness(t)

	code, env := hs.get(t, "/api/events", url.Values{
		"start": {"2024-01-01"},
		"end":   {"2024-03-31"},
		"type":  {"CPI"},
	})
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Rows  []models.Event `json:"rows"`
		Total int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.NotEmpty(t, list.Rows)
	for _, e := range list.Rows {
		assert.Equal(t, "CPI", e.Name)
		assert.False(t, e.DateTime.Before(time.Date(2024, 1, 1, 0, 0, 0, 0, ny)))
		assert.False(t, e.DateTime.After(time.Date(2024, 3, 31, 23, 59, 59, 999999999, ny)))
	}

	_, env = hs.get(t, "/api/events", url.Values{"limit": {"3"}})
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Rows, 3)
	assert.Greater(t, list.Total, int64(3))
}

func TestEventsRejectsBadTime(t *testing.T) {
	hs := newHarness(t)
	code, _ := hs.get(t, "/api/events", url.Values{"start": {"yesterday"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLatestEvents(t *testing.T) {
	hs := newHarness(t)
	code, env := hs.get(t, "/api/events/latest", url.Values{"n": {"5"}})
	require.Equal(t, http.StatusOK, code)
	var events []models.Event
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 5)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].DateTime.After(events[i-1].DateTime))
	}
}

func TestAssets(t *testing.T) {
	hs := newHarness(t)
	_, env := hs.get(t, "/api/assets", url.Values{"category": {"Volatility"}})
	var res assetsResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Assets, 1)
	assert.Equal(t, "^VIX", res.Assets[0].Ticker)
	assert.Len(t, res.Categories, 5)

	code, _ := hs.get(t, "/api/assets", url.Values{"category": {"Crypto"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestReturns(t *testing.T) {
	hs := newHarness(t)
	code, env := hs.get(t, "/api/returns", url.Values{"ticker": {"SPY"}, "event_time": {"2024-06-12 08:30"}})
	require.Equal(t, http.StatusOK, code)
	var res returnsResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.InDelta(t, 1.0, res.Returns["1m"], 1e-9)
	assert.Nil(t, res.Skip)

	code, _ = hs.get(t, "/api/returns", url.Values{"ticker": {"NOPE"}, "event_time": {"2024-06-12 08:30"}})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = hs.get(t, "/api/returns", url.Values{"ticker": {"SPY"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestReactions(t *testing.T) {
	hs := newHarness(t)
	code, env := hs.get(t, "/api/reactions", url.Values{"event_time": {"2024-06-12T12:30:00Z"}})
	require.Equal(t, http.StatusOK, code)

	var report models.ReactionReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "SPY", report.Rows[0].Ticker)
	assert.Equal(t, "TLT", report.Rows[1].Ticker)
	assert.InDelta(t, -1.0, report.Rows[1].Returns["5m"], 1e-9)
	assert.Len(t, report.Skipped, 14)
	for _, s := range report.Skipped {
		assert.Equal(t, models.SkipNoData, s.Reason.Code)
	}
}

func TestSummary(t *testing.T) {
	hs := newHarness(t)
	code, env := hs.get(t, "/api/reactions/summary", url.Values{"event_time": {"2024-06-12 08:30"}, "horizon": {"15m"}})
	require.Equal(t, http.StatusOK, code)

	var s models.ReactionSummary
	require.NoError(t, json.Unmarshal(env.Data, &s))
	require.Len(t, s.Quick, 4)
	require.NotNil(t, s.Quick[0].Value)
	assert.InDelta(t, 1.0, *s.Quick[0].Value, 1e-9)
	assert.Nil(t, s.Quick[3].Value)
	assert.Equal(t, "15m", s.Horizon)

	code, _ = hs.get(t, "/api/reactions/summary", url.Values{"event_time": {"2024-06-12 08:30"}, "horizon": {"2h"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPriceAction(t *testing.T) {
	hs := newHarness(t)
	code, env := hs.get(t, "/api/price-action", url.Values{"ticker": {"SPY"}, "event_time": {"2024-06-12 08:30"}})
	require.Equal(t, http.StatusOK, code)
	var pa models.PriceAction
	require.NoError(t, json.Unmarshal(env.Data, &pa))
	assert.True(t, pa.EventMarker.Equal(eventAt))
	assert.Less(t, pa.YMin, 99.0)
	assert.Greater(t, pa.YMax, 102.0)

	code, _ = hs.get(t, "/api/price-action", url.Values{"ticker": {"GLD"}, "event_time": {"2024-06-12 08:30"}})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHistoryWithoutArchive(t *testing.T) {
	hs := newHarness(t)
	code, _ := hs.get(t, "/api/reactions/history", url.Values{"ticker": {"SPY"}})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReactionsRateLimited(t *testing.T) {
	hs := newHarness(t, WithRateLimiter(ratelimit.New(time.Hour, 1)))
	q := url.Values{"event_time": {"2024-06-12 08:30"}}

	code, _ := hs.get(t, "/api/reactions", q)
	assert.Equal(t, http.StatusOK, code)
	code, _ = hs.get(t, "/api/reactions", q)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestHealthAndReady(t *testing.T) {
	hs := newHarness(t,
		WithReadinessCheck("cache", func(context.Context) error { return nil }),
	)
	code, env := hs.get(t, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	var h healthResponse
	require.NoError(t, json.Unmarshal(env.Data, &h))
	assert.Equal(t, "synthetic", h.Mode)
	assert.Equal(t, "never built", h.CacheAge)

	// building the cache makes the age visible
	hs.get(t, "/api/event-types", nil)
	hs.get(t, "/api/events/latest", nil)
	_, env = hs.get(t, "/health", nil)
	require.NoError(t, json.Unmarshal(env.Data, &h))
	assert.NotNil(t, h.LastRefresh)
	assert.NotEqual(t, "never built", h.CacheAge)

	code, _ = hs.get(t, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, code)

	failing := newHarness(t, WithReadinessCheck("clickhouse", func(context.Context) error { return context.DeadlineExceeded }))
	code, env = failing.get(t, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, string(env.Data), "clickhouse")
}

func TestStreamReactions(t *testing.T) {
	hs := newHarness(t)
	srv := httptest.NewServer(hs.e)
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/reactions?" + url.Values{"event_time": {"2024-06-12 08:30"}}.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()

	var rows, skips int
	for {
		var f streamFrame
		require.NoError(t, conn.ReadJSON(&f))
		switch f.Type {
		case frameRow:
			rows++
			require.NotNil(t, f.Row)
		case frameSkip:
			skips++
		case frameDone:
			assert.Equal(t, 2, f.Rows)
			assert.Equal(t, 14, f.Skips)
			assert.Equal(t, 2, rows)
			assert.Equal(t, 14, skips)
			return
		}
	}
}
