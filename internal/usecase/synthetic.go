package usecase

import (
	"math/rand/v2"
	"time"

	"MacroPull/internal/domain/models"
	"MacroPull/internal/domain/registry"
	"MacroPull/pkg/util"
)

// maxSyntheticDay keeps template days valid in every month.
const maxSyntheticDay = 28

// SyntheticGenerator fabricates plausible events from the template table.
// Which events exist and when depends only on now; values are random.
type SyntheticGenerator struct {
	templates []registry.Template
	months    int
	loc       *time.Location
	rng       *rand.Rand
}

func NewSyntheticGenerator(months int, loc *time.Location, rng *rand.Rand) *SyntheticGenerator {
	if months <= 0 {
		months = 12
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return &SyntheticGenerator{
		templates: registry.Templates(),
		months:    months,
		loc:       loc,
		rng:       rng,
	}
}

// Generate returns events for the current and previous months-1 calendar
// months. Dates after now (compared at midnight) are skipped.
func (g *SyntheticGenerator) Generate(now time.Time) []models.Event {
	now = now.In(g.loc)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, g.loc)

	var out []models.Event
	for ago := 0; ago < g.months; ago++ {
		month := firstOfMonth.AddDate(0, -ago, 0)
		for _, tpl := range g.templates {
			if !tpl.Schedule.Includes(month.Month()) {
				continue
			}
			day := time.Date(month.Year(), month.Month(), min(tpl.Day, maxSyntheticDay), 0, 0, 0, 0, g.loc)
			if day.After(now) {
				continue
			}
			out = append(out, models.Event{
				DateTime:            tpl.ReleaseTime.On(day, g.loc),
				Name:                tpl.Name,
				Actual:              util.Round2(tpl.BaseValue + g.uniform(-tpl.Volatility, tpl.Volatility)),
				Forecast:            util.Round2(tpl.BaseValue + g.uniform(-tpl.Volatility/2, tpl.Volatility/2)),
				Previous:            util.Round2(tpl.BaseValue + g.uniform(-tpl.Volatility, tpl.Volatility)),
				ForecastIsSynthetic: true,
				Source:              models.SourceSynthetic,
			})
		}
	}
	return out
}

func (g *SyntheticGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
