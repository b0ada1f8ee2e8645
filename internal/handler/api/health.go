package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"MacroPull/internal/domain/models"
	xhttp "MacroPull/pkg/http"
)

type indicatorStatus struct {
	Key    string `json:"key"`
	Events int    `json:"events"`
	Skip   string `json:"skip,omitempty"`
}

type healthResponse struct {
	Status        string            `json:"status"`
	Mode          string            `json:"mode"`
	Uptime        string            `json:"uptime"`
	LastRefresh   *time.Time        `json:"last_refresh,omitempty"`
	CacheAge      string            `json:"cache_age"`
	ArchiveTarget string            `json:"archive_backend"`
	Indicators    []indicatorStatus `json:"indicators,omitempty"`
}

// Health reports the event cache state without touching providers.
func (h *DashboardHandler) Health(c echo.Context) error {
	lastRefresh, live, outcomes := h.catalog.CacheInfo()
	now := h.now()

	res := healthResponse{
		Status:        "ok",
		Mode:          string(models.SourceSynthetic),
		Uptime:        now.Sub(h.started).Round(time.Second).String(),
		CacheAge:      "never built",
		ArchiveTarget: h.archive.Backend(),
	}
	if live {
		res.Mode = string(models.SourceLive)
	}
	if !lastRefresh.IsZero() {
		res.LastRefresh = &lastRefresh
		res.CacheAge = humanize.RelTime(lastRefresh, now, "ago", "from now")
	}
	for _, o := range outcomes {
		s := indicatorStatus{Key: o.Key, Events: len(o.Events)}
		if o.Skip != nil {
			s.Skip = o.Skip.Code
		}
		res.Indicators = append(res.Indicators, s)
	}
	return xhttp.SuccessResponse(c, res)
}

// Ready probes every registered dependency; any failure yields 503.
func (h *DashboardHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	status := http.StatusOK
	for _, chk := range h.checks {
		if err := chk.Check(ctx); err != nil {
			checks[chk.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[chk.Name] = "ok"
	}
	return xhttp.DataResponse(c, status, checks)
}
