package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroPull/internal/domain/models"
)

func TestAssetsByCategory(t *testing.T) {
	eq := AssetsByCategory(models.CategoryEquities)
	require.Len(t, eq, 4)
	assert.Equal(t, []string{"SPY", "QQQ", "IWM", "DIA"}, tickers(eq))

	assert.Empty(t, AssetsByCategory("Crypto"))
	assert.NotNil(t, AssetsByCategory("Crypto"))
}

func TestUniverseCoversCategories(t *testing.T) {
	total := 0
	for _, c := range Categories() {
		total += len(AssetsByCategory(c))
	}
	assert.Equal(t, len(Assets()), total)
	assert.Len(t, Assets(), 16)
}

func TestAssetsReturnsCopy(t *testing.T) {
	a := Assets()
	a[0].Ticker = "XXX"
	got, ok := Asset("SPY")
	require.True(t, ok)
	assert.Equal(t, "S&P 500 ETF", got.Name)
}

func TestIndicatorsValid(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Indicators() {
		assert.True(t, d.Transform.Valid(), d.Key)
		assert.False(t, seen[d.Key], "duplicate %s", d.Key)
		seen[d.Key] = true
	}
	fomc, ok := Indicator("FOMC Rate Decision")
	require.True(t, ok)
	assert.Equal(t, models.ClockTime{Hour: 14}, fomc.ReleaseTime)
}

func TestScheduleIncludes(t *testing.T) {
	assert.True(t, Monthly.Includes(time.February))
	assert.True(t, FOMCMeetings.Includes(time.March))
	assert.False(t, FOMCMeetings.Includes(time.February))
	assert.True(t, QuarterStart.Includes(time.October))
	assert.False(t, QuarterStart.Includes(time.November))
}

func tickers(as []models.Asset) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Ticker
	}
	return out
}
