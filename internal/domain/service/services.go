package service

import (
	"time"

	"MacroPull/internal/domain/models"
)

// Transformer derives the reported metric from raw observations.
type Transformer interface {
	Apply(kind models.TransformKind, obs []models.Observation) ([]models.DerivedObservation, error)
}

// ReturnCalculator measures percent returns at fixed horizons after an event.
type ReturnCalculator interface {
	Compute(bars []models.PriceBar, eventTime time.Time) models.ReturnSet
}
