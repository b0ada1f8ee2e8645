package transform

import (
	"fmt"
	"math"
	"slices"

	"MacroPull/internal/domain/models"
	"MacroPull/pkg/util"
)

// PMI proxy bounds around the 50 midpoint.
const (
	pmiCenter = 50.0
	pmiClip   = 10.0
)

// Transformer applies TransformKind formulas. It holds no state.
type Transformer struct{}

func New() *Transformer { return &Transformer{} }

// Apply sorts obs by date and derives the metric for kind. Points the transform
// cannot produce (seed periods, zero denominators) are dropped, so the result
// may be shorter than the input or empty.
func (Transformer) Apply(kind models.TransformKind, obs []models.Observation) ([]models.DerivedObservation, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown transform %q", kind)
	}
	sorted := slices.Clone(obs)
	slices.SortStableFunc(sorted, func(a, b models.Observation) int { return a.Date.Compare(b.Date) })

	lag := Lookback(kind)
	out := make([]models.DerivedObservation, 0, len(sorted))
	for i := lag; i < len(sorted); i++ {
		cur := sorted[i].Value
		var v float64
		switch kind {
		case models.TransformLevel:
			v = cur
		case models.TransformPctChangeYoY, models.TransformPctChangeMoM:
			v = pctChange(cur, sorted[i-lag].Value) * 100
		case models.TransformPctChangeQoQ:
			v = pctChange(cur, sorted[i-1].Value) * 400
		case models.TransformMoMChange:
			v = cur - sorted[i-1].Value
		case models.TransformPMIProxy:
			g := pctChange(cur, sorted[i-1].Value) * 100
			if math.IsNaN(g) {
				continue
			}
			v = pmiCenter + util.Clip(g, -pmiClip, pmiClip)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, models.DerivedObservation{Date: sorted[i].Date, Raw: cur, Value: v})
	}
	return out, nil
}

// Lookback is the number of leading observations a transform consumes as seed.
func Lookback(kind models.TransformKind) int {
	switch kind {
	case models.TransformLevel:
		return 0
	case models.TransformPctChangeYoY:
		return 12
	default:
		return 1
	}
}

func pctChange(cur, prev float64) float64 {
	return cur/prev - 1
}
