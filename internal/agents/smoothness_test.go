package agents_test

import (
	"context"
	"testing"
	"time"

	"github.com/aosanya/liftkernel/internal/agents"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothnessAgent_NoStagingWithinThreshold(t *testing.T) {
	model := pumpmodel.NewDefault()
	agent := agents.NewSmoothnessAgent(model, nil)

	rec := agent.Assess(context.Background(), agents.AssessInput{
		State: kernel.SystemState{
			Timestamp:    time.Now(),
			L1M:          2.0,
			F1M3Per15Min: 900,
		},
		Forecast:      flatForecast(900),
		Specs:         model.Specs(),
		PreviousF2M3H: 3600,
	})

	require.Equal(t, kernel.PriorityLow, rec.Priority)
	assert.Nil(t, rec.Data["staged"])
	assert.InDelta(t, 2000.0, rec.Data["max_step_m3h"], 1e-9)
}

func TestSmoothnessAgent_StagesLargeStep(t *testing.T) {
	model := pumpmodel.NewDefault()
	agent := agents.NewSmoothnessAgent(model, nil)

	rec := agent.Assess(context.Background(), agents.AssessInput{
		State: kernel.SystemState{
			Timestamp:    time.Now(),
			L1M:          2.0,
			F1M3Per15Min: 3000,
		},
		Forecast:      flatForecast(3000),
		Specs:         model.Specs(),
		PreviousF2M3H: 0,
	})

	staged, ok := rec.Data["staged"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, staged, 2)

	firstFlow, ok := staged[0]["flow"].(float64)
	require.True(t, ok)
	secondFlow, ok := staged[1]["flow"].(float64)
	require.True(t, ok)

	assert.Equal(t, 0, staged[0]["delay_ticks"])
	assert.Equal(t, 1, staged[1]["delay_ticks"])
	assert.Greater(t, firstFlow, 0.0)
	assert.Greater(t, secondFlow, firstFlow)
}

func TestSmoothnessAgent_HighPriorityOnVeryLargeStep(t *testing.T) {
	model := pumpmodel.NewDefault()
	agent := agents.NewSmoothnessAgent(model, nil)

	rec := agent.Assess(context.Background(), agents.AssessInput{
		State: kernel.SystemState{
			Timestamp:    time.Now(),
			L1M:          2.0,
			F1M3Per15Min: 5000,
		},
		Forecast:      flatForecast(5000),
		Specs:         model.Specs(),
		PreviousF2M3H: 0,
	})

	assert.Equal(t, kernel.PriorityMedium, rec.Priority)
}
