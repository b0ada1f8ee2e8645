package fred

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MacroPull/internal/domain/models"
	drepo "MacroPull/internal/domain/repository"
	"MacroPull/internal/service/ratelimit"
	xhttp "MacroPull/pkg/http"
)

const DefaultBaseURL = "https://api.stlouisfed.org/fred"

// Client reads series observations from the FRED API.
type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.Limiter
}

// New creates a FRED client. An empty apiKey yields models.ErrNoCredential on fetch.
func New(http *xhttp.Client, baseURL, apiKey string, limiter *ratelimit.Limiter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limiter == nil {
		limiter = ratelimit.PerMinute(0)
	}
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: limiter,
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchObservations returns up to limit observations, newest first as FRED
// sends them. Missing values (".") are dropped.
func (c *Client) FetchObservations(ctx context.Context, seriesID string, limit int) ([]models.Observation, error) {
	if c.apiKey == "" {
		return nil, models.ErrNoCredential
	}
	if err := c.limiter.Wait(ctx, "fred"); err != nil {
		return nil, fmt.Errorf("fred rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp observationsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		URL:         c.baseURL + "/series/observations",
		QueryParams: q,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fred %s: %w", seriesID, err)
	}

	out := make([]models.Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		v, err := strconv.ParseFloat(strings.TrimSpace(o.Value), 64)
		if err != nil {
			continue
		}
		d, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			continue
		}
		out = append(out, models.Observation{Date: d, Value: v})
	}
	return out, nil
}

var _ drepo.EconomicSource = (*Client)(nil)
