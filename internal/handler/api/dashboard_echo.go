package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"MacroPull/internal/domain/models"
	"MacroPull/internal/domain/registry"
	"MacroPull/internal/service/ratelimit"
	"MacroPull/internal/usecase"
	xhttp "MacroPull/pkg/http"
	"MacroPull/pkg/logger"
	"MacroPull/pkg/util"
)

// ReadinessCheck is one dependency probed by /health/ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HandlerOption configures DashboardHandler.
type HandlerOption func(*DashboardHandler)

// WithReadinessCheck adds a dependency probe.
func WithReadinessCheck(name string, check func(ctx context.Context) error) HandlerOption {
	return func(h *DashboardHandler) {
		h.checks = append(h.checks, ReadinessCheck{Name: name, Check: check})
	}
}

// WithRateLimiter throttles reaction endpoints per client IP.
func WithRateLimiter(l *ratelimit.Limiter) HandlerOption {
	return func(h *DashboardHandler) {
		h.limiter = l
	}
}

// DashboardHandler serves events, reactions and the derived chart data.
type DashboardHandler struct {
	log       *logger.Logger
	catalog   *usecase.EventCatalog
	reactions *usecase.ReactionAggregator
	dashboard *usecase.Dashboard
	archive   *usecase.ReactionArchiver
	loc       *time.Location
	limiter   *ratelimit.Limiter
	checks    []ReadinessCheck
	upgrader  websocket.Upgrader
	started   time.Time
	now       func() time.Time
}

func NewDashboardHandler(
	log *logger.Logger,
	catalog *usecase.EventCatalog,
	reactions *usecase.ReactionAggregator,
	dashboard *usecase.Dashboard,
	archive *usecase.ReactionArchiver,
	loc *time.Location,
	opts ...HandlerOption,
) *DashboardHandler {
	h := &DashboardHandler{
		log:       log.Component("api"),
		catalog:   catalog,
		reactions: reactions,
		dashboard: dashboard,
		archive:   archive,
		loc:       loc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		started: time.Now(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/event-types", h.EventTypes)
	g.GET("/events", h.Events)
	g.GET("/events/latest", h.LatestEvents)
	g.GET("/assets", h.Assets)
	g.GET("/returns", h.Returns)
	g.GET("/reactions", h.Reactions)
	g.GET("/reactions/summary", h.Summary)
	g.GET("/reactions/history", h.History)
	g.GET("/price-action", h.PriceAction)

	e.GET("/ws/reactions", h.StreamReactions)
	e.GET("/health", h.Health)
	e.GET("/health/ready", h.Ready)
}

func (h *DashboardHandler) EventTypes(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.catalog.EventTypes())
}

func (h *DashboardHandler) Events(c echo.Context) error {
	req := &models.EventsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var f models.EventFilter
	if req.Start != "" {
		t, ok := util.ParseVenueTime(req.Start, h.loc)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("start", "invalid time %q", req.Start))
		}
		f.Start = &t
	}
	if req.End != "" {
		t, ok := util.ParseVenueTime(req.End, h.loc)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("end", "invalid time %q", req.End))
		}
		if util.IsDateOnly(req.End) {
			t = util.EndOfDay(t)
		}
		f.End = &t
	}
	f.Types = req.Types

	events := h.catalog.Events(c.Request().Context(), f)
	total := len(events)
	if req.Limit > 0 && len(events) > req.Limit {
		events = events[:req.Limit]
	}
	return xhttp.ListResponse(c, events, int64(total))
}

func (h *DashboardHandler) LatestEvents(c echo.Context) error {
	req := &models.LatestEventsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.catalog.Latest(c.Request().Context(), req.N))
}

type assetsResponse struct {
	Categories []models.Category `json:"categories"`
	Assets     []models.Asset    `json:"assets"`
}

func (h *DashboardHandler) Assets(c echo.Context) error {
	req := &models.AssetsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res := assetsResponse{Categories: registry.Categories()}
	if req.Category == "" {
		res.Assets = registry.Assets()
	} else {
		res.Assets = registry.AssetsByCategory(models.Category(req.Category))
	}
	return xhttp.SuccessResponse(c, res)
}

type returnsResponse struct {
	Ticker   string             `json:"ticker"`
	Name     string             `json:"name"`
	Category models.Category    `json:"category"`
	Returns  models.ReturnSet   `json:"returns"`
	Skip     *models.SkipReason `json:"skip,omitempty"`
}

func (h *DashboardHandler) Returns(c echo.Context) error {
	req := &models.ReturnsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	eventTime, err := h.eventTime(req.EventTime)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	o, err := h.reactions.AssetReturns(c.Request().Context(), req.Ticker, eventTime)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.mapError(err, "ticker "+req.Ticker))
	}
	returns := o.Returns
	if returns == nil {
		returns = models.ReturnSet{}
	}
	return xhttp.SuccessResponse(c, returnsResponse{
		Ticker:   o.Asset.Ticker,
		Name:     o.Asset.Name,
		Category: o.Asset.Category,
		Returns:  returns,
		Skip:     o.Skip,
	})
}

func (h *DashboardHandler) Reactions(c echo.Context) error {
	req := &models.ReactionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.allow(c); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	eventTime, err := h.eventTime(req.EventTime)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	ctx := c.Request().Context()
	report := h.reactions.Report(ctx, eventTime, h.eventName(ctx, eventTime))
	return xhttp.SuccessResponse(c, report)
}

func (h *DashboardHandler) Summary(c echo.Context) error {
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.allow(c); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	eventTime, err := h.eventTime(req.EventTime)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, h.dashboard.Summary(c.Request().Context(), eventTime, req.Horizon))
}

func (h *DashboardHandler) PriceAction(c echo.Context) error {
	req := &models.PriceActionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	eventTime, err := h.eventTime(req.EventTime)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	pa, err := h.dashboard.PriceAction(c.Request().Context(), req.Ticker, eventTime, req.Horizon)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.mapError(err, "price data for "+req.Ticker))
	}
	return xhttp.SuccessResponse(c, pa)
}

func (h *DashboardHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q := models.HistoryQuery{Ticker: req.Ticker, Limit: req.Limit}
	if req.From != "" {
		t, ok := util.ParseVenueTime(req.From, h.loc)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("from", "invalid time %q", req.From))
		}
		q.From = t
	}
	if req.To != "" {
		t, ok := util.ParseVenueTime(req.To, h.loc)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("to", "invalid time %q", req.To))
		}
		if util.IsDateOnly(req.To) {
			t = util.EndOfDay(t)
		}
		q.To = t
	}

	rows, err := h.archive.History(c.Request().Context(), q)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.mapError(err, "history"))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *DashboardHandler) eventTime(s string) (time.Time, error) {
	t, ok := util.ParseVenueTime(s, h.loc)
	if !ok {
		return time.Time{}, xhttp.BadRequestErrorf("event_time", "invalid time %q", s)
	}
	return t, nil
}

// eventName looks up the cached event released at t, if any.
func (h *DashboardHandler) eventName(ctx context.Context, t time.Time) string {
	for _, e := range h.catalog.Events(ctx, models.EventFilter{Start: &t, End: &t}) {
		if e.DateTime.Equal(t) {
			return e.Name
		}
	}
	return ""
}

func (h *DashboardHandler) allow(c echo.Context) error {
	if h.limiter == nil || h.limiter.Allow(c.RealIP()) {
		return nil
	}
	return xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many reaction requests", http.StatusTooManyRequests)
}

func (h *DashboardHandler) mapError(err error, what string) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return xhttp.NotFoundErrorf("%s not found", what).WithError(err)
	case errors.Is(err, models.ErrNoData):
		return xhttp.NotFoundErrorf("no %s", what).WithError(err)
	case errors.Is(err, models.ErrArchiveDisabled):
		return xhttp.UnavailableErrorf("%s requires the clickhouse archive backend", what).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.UnavailableErrorf("%s timed out", what).WithError(err)
	default:
		h.log.Error("request failed", logger.String("what", what), logger.Error(err))
		return xhttp.InternalErrorf("%s failed", what).WithError(err)
	}
}
