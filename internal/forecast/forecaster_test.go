package forecast_test

import (
	"testing"

	"github.com/aosanya/liftkernel/internal/forecast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast_ColdStart(t *testing.T) {
	f := forecast.New(forecast.DefaultModel())
	snap := f.Forecast(0, []float64{1500})

	assert.Equal(t, 0.2, snap.Confidence)
	assert.False(t, snap.StormDetected)
	require.Len(t, snap.Next24h, 96)
	for _, v := range snap.Next24h {
		assert.Equal(t, 1500.0, v)
	}
}

func TestForecast_Steady(t *testing.T) {
	model := forecast.DefaultModel()
	f := forecast.New(model)

	history := make([]float64, 200)
	for i := range history {
		history[i] = 1800
	}

	snap := f.Forecast(200, history)
	require.Len(t, snap.Next6h, 24)
	require.Len(t, snap.Next24h, 96)
	assert.InDelta(t, 1800, snap.Next24h[0], 50)
	assert.Equal(t, forecast.TrendStable, snap.Trend)
	assert.Greater(t, snap.Confidence, 0.2)
}

func TestForecast_RisingTrendAndStorm(t *testing.T) {
	model := forecast.DefaultModel()
	f := forecast.New(model)

	history := make([]float64, 150)
	for i := range history {
		history[i] = 500 + float64(i)*40
	}

	snap := f.Forecast(150, history)
	assert.Equal(t, forecast.TrendRising, snap.Trend)
	assert.True(t, snap.StormDetected)
	assert.Greater(t, snap.PeakValue, history[len(history)-1])
}

func TestForecast_NotRestartable_FreshEachCall(t *testing.T) {
	model := forecast.DefaultModel()
	f := forecast.New(model)
	history := make([]float64, 120)
	for i := range history {
		history[i] = 1000
	}

	a := f.Forecast(120, history)
	b := f.Forecast(120, history)
	assert.Equal(t, a.Next24h, b.Next24h)
}
