package api

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"MacroPull/internal/domain/models"
	xhttp "MacroPull/pkg/http"
	"MacroPull/pkg/logger"
)

const wsWriteTimeout = 10 * time.Second

// Stream message types.
const (
	frameRow  = "row"
	frameSkip = "skip"
	frameDone = "done"
)

type streamFrame struct {
	Type    string               `json:"type"`
	Row     *models.ReactionRow  `json:"row,omitempty"`
	Skipped *models.SkippedAsset `json:"skipped,omitempty"`
	Rows    int                  `json:"rows,omitempty"`
	Skips   int                  `json:"skips,omitempty"`
}

// StreamReactions upgrades to a websocket and sends one frame per asset as
// it completes, then a done frame. Completion order is not universe order.
func (h *DashboardHandler) StreamReactions(c echo.Context) error {
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

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", logger.Error(err))
		return nil
	}
	defer conn.Close()

	// the request context is not cancelled once the connection is hijacked
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	var rows, skips int
	for o := range h.reactions.Stream(ctx, eventTime) {
		frame := streamFrame{Type: frameRow}
		if o.Skip != nil {
			skips++
			frame = streamFrame{Type: frameSkip, Skipped: &models.SkippedAsset{Ticker: o.Asset.Ticker, Reason: *o.Skip}}
		} else {
			rows++
			frame.Row = &models.ReactionRow{
				Ticker:   o.Asset.Ticker,
				Name:     o.Asset.Name,
				Category: o.Asset.Category,
				Returns:  o.Returns,
			}
		}
		if err := h.writeFrame(conn, frame); err != nil {
			h.log.Debug("websocket client gone", logger.Error(err))
			return nil
		}
	}

	_ = h.writeFrame(conn, streamFrame{Type: frameDone, Rows: rows, Skips: skips})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteTimeout))
	return nil
}

func (h *DashboardHandler) writeFrame(conn *websocket.Conn, f streamFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(f)
}
