package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"MacroPull/internal/domain/models"
	drepo "MacroPull/internal/domain/repository"
	"MacroPull/pkg/logger"
)

// Archive backends.
const (
	ArchiveNone       = "none"
	ArchiveKafka      = "kafka"
	ArchiveClickHouse = "clickhouse"
)

// ReactionArchiver writes computed reactions to the configured backend.
type ReactionArchiver struct {
	pub     drepo.ReactionArchive
	store   drepo.ArchiveStore
	metrics drepo.Metrics
	log     *logger.Logger
	backend string
	now     func() time.Time
}

func NewReactionArchiver(
	pub drepo.ReactionArchive,
	store drepo.ArchiveStore,
	metrics drepo.Metrics,
	log *logger.Logger,
	backend string,
) *ReactionArchiver {
	return &ReactionArchiver{
		pub:     pub,
		store:   store,
		metrics: metrics,
		log:     log.Component("archive"),
		backend: backend,
		now:     time.Now,
	}
}

// Backend names the active backend.
func (p *ReactionArchiver) Backend() string { return p.backend }

// Record snapshots rows and archives them. Failures are logged and counted only.
func (p *ReactionArchiver) Record(ctx context.Context, eventTime time.Time, eventName string, rows []models.ReactionRow) {
	if p.backend == ArchiveNone || p.backend == "" {
		return
	}
	snap := models.ReactionSnapshot{
		ID:         uuid.NewString(),
		EventTime:  eventTime,
		EventName:  eventName,
		ComputedAt: p.now().UTC(),
		Rows:       rows,
	}
	if err := p.Archive(ctx, snap); err != nil {
		p.log.Error("archive reaction failed",
			logger.String("snapshot_id", snap.ID),
			logger.String("backend", p.backend),
			logger.Error(err))
	}
}

// Archive routes one snapshot to the configured backend.
func (p *ReactionArchiver) Archive(ctx context.Context, snap models.ReactionSnapshot) error {
	start := time.Now()
	var (
		err  error
		rows int
	)

	switch p.backend {
	case ArchiveKafka:
		err = p.pub.Archive(ctx, snap)
		rows = len(snap.Rows)
	case ArchiveClickHouse:
		flat := snap.Flatten()
		err = p.store.StoreBatch(ctx, flat)
		rows = len(flat)
	case ArchiveNone:
		return nil
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("archive")
		return fmt.Errorf("archive snapshot: %w", err)
	}

	p.metrics.RecordArchived(p.backend, rows)
	p.metrics.RecordLatency("archive", time.Since(start).Seconds())
	return nil
}

// History reads archived rows back. Only the clickhouse backend can serve it.
func (p *ReactionArchiver) History(ctx context.Context, q models.HistoryQuery) ([]models.ArchivedReturn, error) {
	if p.store == nil {
		return nil, models.ErrArchiveDisabled
	}
	return p.store.History(ctx, q)
}

// Close closes underlying resources if available.
func (p *ReactionArchiver) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
