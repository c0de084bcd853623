package agents_test

import (
	"context"
	"testing"
	"time"

	"github.com/aosanya/liftkernel/internal/agents"
	"github.com/aosanya/liftkernel/internal/forecast"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/aosanya/liftkernel/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatForecast(v float64) forecast.Snapshot {
	next24 := make([]float64, 96)
	for i := range next24 {
		next24[i] = v
	}
	return forecast.Snapshot{
		Next6h:  next24[:24],
		Next24h: next24,
	}
}

func TestSafetyAgent_SafeWhenLevelLow(t *testing.T) {
	model := pumpmodel.NewDefault()
	agent := agents.NewSafetyAgent(model, nil)
	tracker := runtime.NewTracker([]string{"P1", "P2"}, nil)

	rec := agent.Assess(context.Background(), agents.AssessInput{
		State: kernel.SystemState{
			Timestamp:    time.Now(),
			L1M:          1.0,
			VM3:          10000,
			F1M3Per15Min: 200,
		},
		Forecast: flatForecast(200),
		Specs:    model.Specs(),
		Runtime:  tracker.Snapshot(),
	})

	require.Equal(t, kernel.PriorityLow, rec.Priority)
	assert.False(t, rec.CanVeto)
	assert.Equal(t, agents.SafetySafe, rec.Data["state"])
}

func TestSafetyAgent_CriticalWhenAboveAlarm(t *testing.T) {
	model := pumpmodel.NewDefault()
	agent := agents.NewSafetyAgent(model, nil)
	tracker := runtime.NewTracker([]string{"P1"}, nil)

	rec := agent.Assess(context.Background(), agents.AssessInput{
		State: kernel.SystemState{
			Timestamp:    time.Now(),
			L1M:          7.5,
			VM3:          75000,
			F1M3Per15Min: 900,
		},
		Forecast: flatForecast(900),
		Specs:    model.Specs(),
		Runtime:  tracker.Snapshot(),
	})

	require.Equal(t, kernel.PriorityCritical, rec.Priority)
	assert.True(t, rec.CanVeto)
	assert.Equal(t, agents.SafetyCritical, rec.Data["state"])
	assert.Greater(t, rec.Data["required_pump_count"], 0)
}

func TestSafetyAgent_RisesWithHighForecastInflow(t *testing.T) {
	model := pumpmodel.NewDefault()
	agent := agents.NewSafetyAgent(model, nil)
	tracker := runtime.NewTracker([]string{"P1"}, nil)

	rec := agent.Assess(context.Background(), agents.AssessInput{
		State: kernel.SystemState{
			Timestamp:    time.Now(),
			L1M:          4.0,
			VM3:          40000,
			F1M3Per15Min: 500,
		},
		Forecast: flatForecast(6000),
		Specs:    model.Specs(),
		Runtime:  tracker.Snapshot(),
	})

	assert.NotEqual(t, kernel.PriorityLow, rec.Priority)
}
