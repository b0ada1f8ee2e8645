package transform

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroPull/internal/domain/models"
)

func monthly(values ...float64) []models.Observation {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Observation, len(values))
	for i, v := range values {
		out[i] = models.Observation{Date: start.AddDate(0, i, 0), Value: v}
	}
	return out
}

func rising(n int) []models.Observation {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = 100 + float64(i)
	}
	return monthly(vals...)
}

func TestApplyFormulas(t *testing.T) {
	tr := New()
	obs := monthly(100, 110, 99)

	cases := []struct {
		kind models.TransformKind
		want []float64
	}{
		{models.TransformLevel, []float64{100, 110, 99}},
		{models.TransformPctChangeMoM, []float64{10, -10}},
		{models.TransformPctChangeQoQ, []float64{40, -40}},
		{models.TransformMoMChange, []float64{10, -11}},
		{models.TransformPMIProxy, []float64{60, 40}},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			got, err := tr.Apply(tc.kind, obs)
			require.NoError(t, err)
			require.Len(t, got, len(tc.want))
			for i, w := range tc.want {
				assert.InDelta(t, w, got[i].Value, 1e-9)
			}
		})
	}
}

func TestYoYOmitsSeedPeriods(t *testing.T) {
	obs := rising(15)
	got, err := New().Apply(models.TransformPctChangeYoY, obs)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, obs[12].Date, got[0].Date)
	assert.InDelta(t, (112.0/100.0-1)*100, got[0].Value, 1e-9)
	assert.Equal(t, 112.0, got[0].Raw)

	short, err := New().Apply(models.TransformPctChangeYoY, rising(12))
	require.NoError(t, err)
	assert.Empty(t, short)
}

func TestOutputOrderedAndNoLonger(t *testing.T) {
	obs := rising(24)
	// Reverse to make sure input order does not matter.
	for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
		obs[i], obs[j] = obs[j], obs[i]
	}
	for _, kind := range []models.TransformKind{
		models.TransformLevel, models.TransformPctChangeYoY, models.TransformPctChangeMoM,
		models.TransformPctChangeQoQ, models.TransformMoMChange, models.TransformPMIProxy,
	} {
		got, err := New().Apply(kind, obs)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), len(obs), kind)
		assert.Len(t, got, len(obs)-Lookback(kind), kind)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i-1].Date.Before(got[i].Date), kind)
		}
	}
}

func TestPMIProxyBounded(t *testing.T) {
	obs := monthly(1, 1000, 0.5, 0, 7, 7.1, 1e-9, 1e9)
	got, err := New().Apply(models.TransformPMIProxy, obs)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, d := range got {
		assert.GreaterOrEqual(t, d.Value, 40.0)
		assert.LessOrEqual(t, d.Value, 60.0)
	}
}

func TestZeroDenominatorDropped(t *testing.T) {
	got, err := New().Apply(models.TransformPctChangeMoM, monthly(0, 5, 10))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 100.0, got[0].Value, 1e-9)
	assert.False(t, math.IsInf(got[0].Value, 0))
}

func TestUnknownKind(t *testing.T) {
	_, err := New().Apply("log_diff", monthly(1, 2))
	assert.Error(t, err)
}
