package returns

import (
	"sort"
	"time"

	"MacroPull/internal/domain/models"
)

// Aligner measures event-relative returns on a bar series.
type Aligner struct {
	loc      *time.Location
	horizons []models.Horizon
}

// New builds an Aligner that interprets times in loc.
func New(loc *time.Location) *Aligner {
	return &Aligner{loc: loc, horizons: models.Horizons}
}

// NearestBarIndex returns the index of the bar closest to ts. On an exact tie
// the earlier bar wins. bars must be sorted ascending by Timestamp.
func NearestBarIndex(bars []models.PriceBar, ts time.Time) (int, bool) {
	n := len(bars)
	if n == 0 {
		return 0, false
	}
	// First bar at or after ts.
	i := sort.Search(n, func(k int) bool { return !bars[k].Timestamp.Before(ts) })
	switch {
	case i == 0:
		return 0, true
	case i == n:
		return n - 1, true
	}
	before := ts.Sub(bars[i-1].Timestamp)
	after := bars[i].Timestamp.Sub(ts)
	if after < before {
		return i, true
	}
	return i - 1, true
}

// Compute returns the percent move from the bar nearest eventTime to the bar
// nearest each horizon. Horizons with no usable bar are absent from the set.
func (a *Aligner) Compute(bars []models.PriceBar, eventTime time.Time) models.ReturnSet {
	out := models.ReturnSet{}
	eventTime = a.localize(eventTime)

	base, ok := NearestBarIndex(bars, eventTime)
	if !ok {
		return out
	}
	basePrice := bars[base].Close
	if basePrice == 0 {
		return out
	}
	for _, h := range a.horizons {
		idx, ok := NearestBarIndex(bars, eventTime.Add(h.Duration()))
		if !ok {
			continue
		}
		out[h.Label] = (bars[idx].Close - basePrice) / basePrice * 100
	}
	return out
}

// localize expresses t in the venue zone. UTC-located times are treated as
// offset-aware; parse boundaries resolve naive input before it gets here.
func (a *Aligner) localize(t time.Time) time.Time {
	if a.loc == nil {
		return t
	}
	return t.In(a.loc)
}
