package coordinator_test

import (
	"context"
	"testing"

	"github.com/aosanya/liftkernel/internal/coordinator"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_SafetyVetoAdoptedVerbatim(t *testing.T) {
	model := pumpmodel.NewDefault()
	c := coordinator.New(coordinator.Config{Model: model})

	corrective := []kernel.PumpCommand{
		{PumpID: "P1", Start: true, FrequencyHz: 50, FlowM3H: 4400, PowerKW: 220, Efficiency: 0.8},
		{PumpID: "P2", Start: true, FrequencyHz: 50, FlowM3H: 4400, PowerKW: 220, Efficiency: 0.8},
	}

	recs := []kernel.Recommendation{
		{
			AgentName: coordinator.AgentSafety,
			Priority:  kernel.PriorityCritical,
			CanVeto:   true,
			Data:      map[string]interface{}{"corrective_commands": corrective},
		},
		{AgentName: coordinator.AgentEfficiency, Priority: kernel.PriorityMedium},
	}

	out := c.Synthesize(context.Background(), coordinator.Input{
		State:           kernel.SystemState{L1M: 7.5},
		Specs:           model.Specs(),
		Recommendations: recs,
	})

	require.Equal(t, kernel.PriorityCritical, out.PriorityApplied)
	assert.Equal(t, corrective, out.Commands)
}

func TestSynthesize_DeterministicBaselineFromEfficiency(t *testing.T) {
	model := pumpmodel.NewDefault()
	c := coordinator.New(coordinator.Config{Model: model})

	recs := []kernel.Recommendation{
		{
			AgentName: coordinator.AgentEfficiency,
			Priority:  kernel.PriorityMedium,
			Data: map[string]interface{}{
				"recommended_pumps": []string{"P1"},
				"frequencies":       map[string]float64{"P1": 48.5},
			},
		},
		{AgentName: coordinator.AgentSafety, Priority: kernel.PriorityLow},
		{AgentName: coordinator.AgentCompliance, Priority: kernel.PriorityLow},
		{AgentName: coordinator.AgentCost, Priority: kernel.PriorityMedium, Data: map[string]interface{}{"recommendation": "PUMP_NORMALLY"}},
		{AgentName: coordinator.AgentSmoothness, Priority: kernel.PriorityLow, Data: map[string]interface{}{"flow_variability": 0.0, "max_step_m3h": 2000.0, "staged": []map[string]interface{}(nil)}},
		{AgentName: coordinator.AgentInflow, Priority: kernel.PriorityMedium},
	}

	out := c.Synthesize(context.Background(), coordinator.Input{
		State:           kernel.SystemState{L1M: 2.0},
		Specs:           model.Specs(),
		Recommendations: recs,
	})

	started := false
	for _, cmd := range out.Commands {
		if cmd.PumpID == "P1" && cmd.Start {
			started = true
			assert.InDelta(t, 48.5, cmd.FrequencyHz, 1e-9)
		}
	}
	assert.True(t, started)
	assert.Contains(t, out.ConflictsResolved, "efficiency_baseline")
}

func TestSynthesize_NeverLeavesAllPumpsStopped(t *testing.T) {
	model := pumpmodel.NewDefault()
	c := coordinator.New(coordinator.Config{Model: model})

	recs := []kernel.Recommendation{
		{AgentName: coordinator.AgentEfficiency, Priority: kernel.PriorityMedium, Data: map[string]interface{}{}},
		{AgentName: coordinator.AgentSafety, Priority: kernel.PriorityLow},
		{AgentName: coordinator.AgentCompliance, Priority: kernel.PriorityLow},
		{AgentName: coordinator.AgentCost, Priority: kernel.PriorityMedium},
		{AgentName: coordinator.AgentSmoothness, Priority: kernel.PriorityLow},
		{AgentName: coordinator.AgentInflow, Priority: kernel.PriorityMedium},
	}

	out := c.Synthesize(context.Background(), coordinator.Input{
		State:           kernel.SystemState{L1M: 2.0},
		Specs:           model.Specs(),
		Recommendations: recs,
	})

	anyRunning := false
	for _, cmd := range out.Commands {
		if cmd.Start {
			anyRunning = true
		}
	}
	assert.True(t, anyRunning)
}
