package usecase

import (
	"sync"
	"time"

	"MacroPull/pkg/util"
)

var ny = util.MustVenue("")

// fakeMetrics counts calls so tests can assert on side effects.
type fakeMetrics struct {
	mu       sync.Mutex
	skips    map[string]int
	archived map[string]int
	refresh  int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{skips: map[string]int{}, archived: map[string]int{}}
}

func (m *fakeMetrics) RecordProviderRequest(string, string) {}
func (m *fakeMetrics) RecordLatency(string, float64)        {}
func (m *fakeMetrics) RecordCacheResult(string, bool)       {}
func (m *fakeMetrics) RecordError(string)                   {}

func (m *fakeMetrics) RecordSkip(unit, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skips[unit+"/"+code]++
}

func (m *fakeMetrics) RecordEventsRefresh(bool, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh++
}

func (m *fakeMetrics) RecordArchived(backend string, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived[backend] += rows
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
