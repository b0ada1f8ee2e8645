package polygon

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"MacroPull/internal/domain/models"
	drepo "MacroPull/internal/domain/repository"
	"MacroPull/internal/service/ratelimit"
	xhttp "MacroPull/pkg/http"
	"MacroPull/pkg/util"
)

const DefaultBaseURL = "https://api.polygon.io"

// Client reads aggregate bars from the Polygon REST API.
type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.Limiter
	venue   *time.Location
	now     func() time.Time
}

func New(http *xhttp.Client, baseURL, apiKey string, limiter *ratelimit.Limiter, venue *time.Location) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limiter == nil {
		limiter = ratelimit.PerSecond(0)
	}
	if venue == nil {
		venue = util.MustVenue(util.DefaultVenue)
	}
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: limiter,
		venue:   venue,
		now:     time.Now,
	}
}

func (c *Client) Name() string { return "polygon" }

type aggsResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Results []struct {
		T int64   `json:"t"`
		O float64 `json:"o"`
		H float64 `json:"h"`
		L float64 `json:"l"`
		C float64 `json:"c"`
		V float64 `json:"v"`
	} `json:"results"`
}

func (c *Client) FetchRange(ctx context.Context, symbol string, from, to time.Time, interval models.Interval) ([]models.PriceBar, error) {
	if c.apiKey == "" {
		return nil, models.ErrNoCredential
	}
	mult, span, err := timespan(interval)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx, c.apiKey); err != nil {
		return nil, fmt.Errorf("polygon rate limit: %w", err)
	}

	path := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%d/%d",
		c.baseURL, url.PathEscape(Ticker(symbol)), mult, span, from.UnixMilli(), to.UnixMilli())
	q := url.Values{}
	q.Set("adjusted", "true")
	q.Set("sort", "asc")
	q.Set("limit", "50000")
	q.Set("apiKey", c.apiKey)

	var resp aggsResponse
	if err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{URL: path, QueryParams: q}, &resp); err != nil {
		return nil, fmt.Errorf("polygon %s: %w", symbol, err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("polygon %s: %s", symbol, resp.Error)
	}

	bars := make([]models.PriceBar, 0, len(resp.Results))
	for _, r := range resp.Results {
		bars = append(bars, models.PriceBar{
			Timestamp: time.UnixMilli(r.T).In(c.venue),
			Open:      r.O,
			High:      r.H,
			Low:       r.L,
			Close:     r.C,
			Volume:    r.V,
		})
	}
	return bars, nil
}

func (c *Client) FetchRecent(ctx context.Context, symbol string, lookback time.Duration, interval models.Interval) ([]models.PriceBar, error) {
	now := c.now()
	return c.FetchRange(ctx, symbol, now.Add(-lookback), now, interval)
}

// Ticker maps a Yahoo-style symbol to Polygon's namespace: indices
// (^VIX) become I:VIX, everything else passes through.
func Ticker(symbol string) string {
	if rest, ok := strings.CutPrefix(symbol, "^"); ok {
		return "I:" + rest
	}
	return symbol
}

func timespan(i models.Interval) (int, string, error) {
	switch i {
	case models.Interval1m:
		return 1, "minute", nil
	case models.Interval5m:
		return 5, "minute", nil
	case models.Interval1h:
		return 1, "hour", nil
	default:
		return 0, "", fmt.Errorf("polygon: unsupported interval %q", i)
	}
}

var _ drepo.BarSource = (*Client)(nil)
