package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"MacroPull/internal/domain/models"
	"MacroPull/pkg/logger"
)

var (
	// ErrNoEvent means the requested event is not in the catalog.
	ErrNoEvent = errors.New("event not found")
	// ErrNoRows means no asset had usable returns for the event.
	ErrNoRows = errors.New("no reaction rows")
)

// EventLister is the part of the event catalog the exporter needs.
type EventLister interface {
	Events(ctx context.Context, f models.EventFilter) []models.Event
	Latest(ctx context.Context, n int) []models.Event
}

// Reactor computes a reaction report for an event.
type Reactor interface {
	Report(ctx context.Context, eventTime time.Time, eventName string) models.ReactionReport
}

// Exporter computes one event's reaction and writes it to disk.
type Exporter struct {
	events    EventLister
	reactions Reactor
	log       *logger.Logger
}

func NewExporter(events EventLister, reactions Reactor, log *logger.Logger) *Exporter {
	return &Exporter{events: events, reactions: reactions, log: log.Component("export")}
}

// Resolve finds the event at t, or the latest event when t is zero.
func (e *Exporter) Resolve(ctx context.Context, t time.Time) (models.Event, error) {
	if t.IsZero() {
		latest := e.events.Latest(ctx, 1)
		if len(latest) == 0 {
			return models.Event{}, ErrNoEvent
		}
		return latest[0], nil
	}
	for _, ev := range e.events.Events(ctx, models.EventFilter{Start: &t, End: &t}) {
		if ev.DateTime.Equal(t) {
			return ev, nil
		}
	}
	return models.Event{}, fmt.Errorf("%w at %s", ErrNoEvent, t.Format(time.RFC3339))
}

// Export writes the reaction for the event at t (latest when zero) to out.
// The saver's extension is appended when out has none. It returns the path
// written.
func (e *Exporter) Export(ctx context.Context, t time.Time, saver Saver, out string) (string, error) {
	ev, err := e.Resolve(ctx, t)
	if err != nil {
		return "", err
	}

	report := e.reactions.Report(ctx, ev.DateTime, ev.Name)
	for _, s := range report.Skipped {
		e.log.Debug("asset skipped", logger.String("ticker", s.Ticker), logger.Any("reason", s.Reason))
	}
	if len(report.Rows) == 0 {
		return "", fmt.Errorf("%w for %s at %s", ErrNoRows, ev.Name, ev.DateTime.Format(time.RFC3339))
	}

	path := out
	if filepath.Ext(path) == "" {
		path = strings.TrimSuffix(path, ".") + "." + saver.Extension()
	}
	if err := saver.Save(Records(ev.DateTime, ev.Name, report.Rows), path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	e.log.Info("reaction exported",
		logger.String("event", ev.Name),
		logger.Time("event_time", ev.DateTime),
		logger.Int("rows", len(report.Rows)),
		logger.Int("skipped", len(report.Skipped)),
		logger.String("path", path))
	return path, nil
}
