package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordSkip("asset", "no_data")
	r.RecordSkip("asset", "no_data")
	r.RecordCacheResult("events", true)
	r.RecordEventsRefresh(false, 72)
	r.RecordArchived("kafka", 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.skips.WithLabelValues("asset", "no_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheResults.WithLabelValues("events", "hit")))
	assert.Equal(t, 72.0, testutil.ToFloat64(r.eventCount))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.archivedRows.WithLabelValues("kafka")))
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
