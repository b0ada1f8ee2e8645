package usecase

import (
	"context"
	"encoding/json"
	"time"

	"MacroPull/internal/domain/models"
	domrepo "MacroPull/internal/domain/repository"
	pkgkafka "MacroPull/pkg/kafka"
)

// KafkaSnapshotHandler consumes archived snapshots and writes them to storage.
type KafkaSnapshotHandler struct {
	topic   string
	storage domrepo.ArchiveStore
	metrics domrepo.Metrics
}

func NewKafkaSnapshotHandler(topic string, storage domrepo.ArchiveStore, metrics domrepo.Metrics) *KafkaSnapshotHandler {
	return &KafkaSnapshotHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaSnapshotHandler) Topic() string { return h.topic }

func (h *KafkaSnapshotHandler) Handle(ctx context.Context, b []byte) error {
	var snap models.ReactionSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if !snap.ComputedAt.IsZero() {
		h.metrics.RecordLatency("archive_e2e", time.Since(snap.ComputedAt).Seconds())
	}

	rows := snap.Flatten()
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	err := h.storage.StoreBatch(ctx, rows)
	h.metrics.RecordLatency("ch_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordArchived("clickhouse", len(rows))
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSnapshotHandler)(nil)
