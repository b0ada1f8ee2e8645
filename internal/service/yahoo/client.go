package yahoo

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MacroPull/internal/domain/models"
	drepo "MacroPull/internal/domain/repository"
	"MacroPull/internal/service/ratelimit"
	xhttp "MacroPull/pkg/http"
	"MacroPull/pkg/util"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client reads intraday bars from the Yahoo v8 chart endpoint.
type Client struct {
	http    *xhttp.Client
	baseURL string
	limiter *ratelimit.Limiter
	venue   *time.Location
	now     func() time.Time
}

// New creates a Yahoo chart client. venue is used when the response carries
// no exchange timezone.
func New(http *xhttp.Client, baseURL string, limiter *ratelimit.Limiter, venue *time.Location) *Client {
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
		limiter: limiter,
		venue:   venue,
		now:     time.Now,
	}
}

func (c *Client) Name() string { return "yahoo" }

// FetchRange returns bars in [from, to].
func (c *Client) FetchRange(ctx context.Context, symbol string, from, to time.Time, interval models.Interval) ([]models.PriceBar, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(from.Unix(), 10))
	q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	q.Set("interval", string(interval))
	q.Set("includePrePost", "false")

	bars, err := c.chart(ctx, symbol, q)
	if err != nil {
		return nil, err
	}
	out := bars[:0]
	for _, b := range bars {
		if !b.Timestamp.Before(from) && !b.Timestamp.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

// FetchRecent returns bars for the trailing lookback, rounded up to whole days.
func (c *Client) FetchRecent(ctx context.Context, symbol string, lookback time.Duration, interval models.Interval) ([]models.PriceBar, error) {
	days := int(math.Ceil(lookback.Hours() / 24))
	q := url.Values{}
	q.Set("range", fmt.Sprintf("%dd", max(1, days)))
	q.Set("interval", string(interval))
	q.Set("includePrePost", "false")
	return c.chart(ctx, symbol, q)
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) chart(ctx context.Context, symbol string, q url.Values) ([]models.PriceBar, error) {
	if err := c.limiter.Wait(ctx, "yahoo"); err != nil {
		return nil, fmt.Errorf("yahoo rate limit: %w", err)
	}

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		URL:         c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
		QueryParams: q,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return []models.PriceBar{}, nil
	}

	res := resp.Chart.Result[0]
	loc := c.venue
	if tz := res.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	if len(res.Indicators.Quote) == 0 {
		return []models.PriceBar{}, nil
	}
	quote := res.Indicators.Quote[0]

	bars := make([]models.PriceBar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		cl := at(quote.Close, i)
		if cl == nil {
			continue
		}
		bars = append(bars, models.PriceBar{
			Timestamp: time.Unix(ts, 0).In(loc),
			Open:      valueOr(at(quote.Open, i), *cl),
			High:      valueOr(at(quote.High, i), *cl),
			Low:       valueOr(at(quote.Low, i), *cl),
			Close:     *cl,
			Volume:    valueOr(at(quote.Volume, i), 0),
		})
	}
	return bars, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

var _ drepo.BarSource = (*Client)(nil)
