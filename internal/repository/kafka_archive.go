package repository

import (
	"context"
	"time"

	"MacroPull/internal/domain/models"
	drepo "MacroPull/internal/domain/repository"
	pkgkafka "MacroPull/pkg/kafka"
)

// KafkaArchive publishes reaction snapshots keyed by event time.
type KafkaArchive struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaArchive(producer *pkgkafka.Producer, topic string) *KafkaArchive {
	return &KafkaArchive{producer: producer, topic: topic}
}

func (p *KafkaArchive) Archive(ctx context.Context, snap models.ReactionSnapshot) error {
	key := []byte(snap.EventTime.UTC().Format(time.RFC3339))
	return p.producer.Publish(ctx, p.topic, key, snap)
}

func (p *KafkaArchive) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ drepo.ReactionArchive = (*KafkaArchive)(nil)
