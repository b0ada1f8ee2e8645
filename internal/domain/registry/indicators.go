// Package registry holds the static indicator, template and asset tables.
package registry

import (
	"time"

	"MacroPull/internal/domain/models"
)

var indicators = []models.IndicatorDefinition{
	{Key: "CPI", SeriesID: "CPIAUCSL", DisplayName: "CPI", ReleaseTime: models.MustParseClock("08:30"), Transform: models.TransformPctChangeYoY},
	{Key: "Core CPI", SeriesID: "CPILFESL", DisplayName: "Core CPI", ReleaseTime: models.MustParseClock("08:30"), Transform: models.TransformPctChangeYoY},
	{Key: "NFP", SeriesID: "PAYEMS", DisplayName: "NFP", ReleaseTime: models.MustParseClock("08:30"), Transform: models.TransformMoMChange},
	{Key: "Unemployment Rate", SeriesID: "UNRATE", DisplayName: "Unemployment Rate", ReleaseTime: models.MustParseClock("08:30"), Transform: models.TransformLevel},
	{Key: "FOMC Rate Decision", SeriesID: "FEDFUNDS", DisplayName: "FOMC Rate Decision", ReleaseTime: models.MustParseClock("14:00"), Transform: models.TransformLevel},
	{Key: "ISM PMI", SeriesID: "MANEMP", DisplayName: "ISM PMI", ReleaseTime: models.MustParseClock("10:00"), Transform: models.TransformPMIProxy},
	{Key: "GDP", SeriesID: "GDP", DisplayName: "GDP", ReleaseTime: models.MustParseClock("08:30"), Transform: models.TransformPctChangeQoQ},
	{Key: "Retail Sales", SeriesID: "RSAFS", DisplayName: "Retail Sales", ReleaseTime: models.MustParseClock("08:30"), Transform: models.TransformPctChangeMoM},
	{Key: "Industrial Production", SeriesID: "INDPRO", DisplayName: "Industrial Production", ReleaseTime: models.MustParseClock("09:15"), Transform: models.TransformPctChangeMoM},
	{Key: "Housing Starts", SeriesID: "HOUST", DisplayName: "Housing Starts", ReleaseTime: models.MustParseClock("08:30"), Transform: models.TransformLevel},
}

// Indicators returns the live indicator registry in its fixed order.
func Indicators() []models.IndicatorDefinition {
	return append([]models.IndicatorDefinition(nil), indicators...)
}

// Indicator looks up a definition by key.
func Indicator(key string) (models.IndicatorDefinition, bool) {
	for _, d := range indicators {
		if d.Key == key {
			return d, true
		}
	}
	return models.IndicatorDefinition{}, false
}

// IndicatorNames returns the display names of the live registry.
func IndicatorNames() []string {
	out := make([]string, len(indicators))
	for i, d := range indicators {
		out[i] = d.DisplayName
	}
	return out
}

// Schedule decides which months a synthetic template releases in.
type Schedule int

const (
	Monthly Schedule = iota
	FOMCMeetings
	QuarterStart
)

var fomcMonths = map[time.Month]bool{
	time.January: true, time.March: true, time.May: true, time.June: true,
	time.July: true, time.September: true, time.November: true, time.December: true,
}

// Includes reports whether the schedule has a release in month m.
func (s Schedule) Includes(m time.Month) bool {
	switch s {
	case FOMCMeetings:
		return fomcMonths[m]
	case QuarterStart:
		return m == time.January || m == time.April || m == time.July || m == time.October
	default:
		return true
	}
}

// Template drives synthetic event generation for one indicator.
type Template struct {
	Name        string
	ReleaseTime models.ClockTime
	BaseValue   float64
	Volatility  float64
	Day         int
	Schedule    Schedule
}

var templates = []Template{
	{Name: "CPI", ReleaseTime: models.MustParseClock("08:30"), BaseValue: 2.8, Volatility: 0.3, Day: 10, Schedule: Monthly},
	{Name: "NFP", ReleaseTime: models.MustParseClock("08:30"), BaseValue: 180, Volatility: 50, Day: 5, Schedule: Monthly},
	{Name: "ISM PMI", ReleaseTime: models.MustParseClock("10:00"), BaseValue: 48.5, Volatility: 2, Day: 1, Schedule: Monthly},
	{Name: "FOMC Rate Decision", ReleaseTime: models.MustParseClock("14:00"), BaseValue: 4.5, Volatility: 0.25, Day: 15, Schedule: FOMCMeetings},
	{Name: "Unemployment Rate", ReleaseTime: models.MustParseClock("08:30"), BaseValue: 4.1, Volatility: 0.2, Day: 5, Schedule: Monthly},
	{Name: "Retail Sales", ReleaseTime: models.MustParseClock("08:30"), BaseValue: 0.5, Volatility: 0.3, Day: 14, Schedule: Monthly},
	{Name: "GDP", ReleaseTime: models.MustParseClock("08:30"), BaseValue: 2.5, Volatility: 0.5, Day: 25, Schedule: QuarterStart},
}

// Templates returns the synthetic templates in their fixed order.
func Templates() []Template {
	return append([]Template(nil), templates...)
}
