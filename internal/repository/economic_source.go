package repository

import (
	"context"
	"time"

	"MacroPull/internal/domain/models"
	drepo "MacroPull/internal/domain/repository"
)

// InstrumentedEconomicSource records outcome and latency of every series fetch.
type InstrumentedEconomicSource struct {
	next    drepo.EconomicSource
	name    string
	timeout time.Duration
	metrics drepo.Metrics
}

func NewInstrumentedEconomicSource(next drepo.EconomicSource, name string, timeout time.Duration, metrics drepo.Metrics) *InstrumentedEconomicSource {
	return &InstrumentedEconomicSource{next: next, name: name, timeout: timeout, metrics: metrics}
}

func (s *InstrumentedEconomicSource) FetchObservations(ctx context.Context, seriesID string, limit int) ([]models.Observation, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	obs, err := s.next.FetchObservations(ctx, seriesID, limit)
	s.metrics.RecordLatency(s.name+"_observations", time.Since(start).Seconds())
	switch {
	case err != nil:
		s.metrics.RecordProviderRequest(s.name, "error")
	case len(obs) == 0:
		s.metrics.RecordProviderRequest(s.name, "empty")
	default:
		s.metrics.RecordProviderRequest(s.name, "ok")
	}
	return obs, err
}

var _ drepo.EconomicSource = (*InstrumentedEconomicSource)(nil)
