package repository

import (
	"time"

	"MacroPull/internal/domain/models"
)

// IsValidInterval returns true if i is a supported bar interval.
func IsValidInterval(i models.Interval) bool {
	switch i {
	case models.Interval1m, models.Interval5m, models.Interval1h:
		return true
	default:
		return false
	}
}

// SelectInterval picks the finest interval providers still serve for an
// event that happened at eventTime. Age is counted in whole days.
func SelectInterval(now, eventTime time.Time) models.Interval {
	days := int(now.Sub(eventTime) / (24 * time.Hour))
	switch {
	case days <= 7:
		return models.Interval1m
	case days <= 60:
		return models.Interval5m
	default:
		return models.Interval1h
	}
}

// Fallback window used when the primary fetch comes back empty.
const (
	FallbackLookback = 5 * 24 * time.Hour
	FallbackInterval = models.Interval5m
)
