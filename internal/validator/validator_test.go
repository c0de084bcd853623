package validator_test

import (
	"testing"
	"time"

	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/aosanya/liftkernel/internal/runtime"
	"github.com/aosanya/liftkernel/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseState() kernel.SystemState {
	return kernel.SystemState{
		Timestamp:    time.Now(),
		L1M:          2.0,
		VM3:          20000,
		F1M3Per15Min: 1000,
	}
}

func TestValidate_MinOnePumpForced(t *testing.T) {
	model := pumpmodel.NewDefault()
	v := validator.New(model)
	tracker := runtime.NewTracker(pumpIDs(model), nil)

	commands, resolved := v.Validate(nil, baseState(), tracker.Snapshot(), false)

	started := 0
	for _, c := range commands {
		if c.Start {
			started++
			assert.True(t, c.FrequencyHz >= 47.8 && c.FrequencyHz <= 50)
		}
	}
	assert.Equal(t, 1, started)
	assert.Contains(t, resolved, "min_one_pump_forced")
}

func TestValidate_FrequencyClamp(t *testing.T) {
	model := pumpmodel.NewDefault()
	v := validator.New(model)
	tracker := runtime.NewTracker(pumpIDs(model), nil)

	tentative := []kernel.PumpCommand{
		{PumpID: "P1", Start: true, FrequencyHz: 10},
		{PumpID: "P2", Start: true, FrequencyHz: 60},
	}
	commands, resolved := v.Validate(tentative, baseState(), tracker.Snapshot(), false)

	for _, c := range commands {
		if c.PumpID == "P1" || c.PumpID == "P2" {
			assert.True(t, c.Start)
			assert.True(t, c.FrequencyHz >= 47.8 && c.FrequencyHz <= 50)
		}
	}
	assert.NotEmpty(t, resolved)
}

func TestValidate_F2CapEnforced(t *testing.T) {
	model := pumpmodel.NewDefault()
	v := validator.New(model)
	tracker := runtime.NewTracker(pumpIDs(model), nil)

	var tentative []kernel.PumpCommand
	for _, id := range pumpIDs(model) {
		tentative = append(tentative, kernel.PumpCommand{PumpID: id, Start: true, FrequencyHz: 50})
	}
	commands, resolved := v.Validate(tentative, baseState(), tracker.Snapshot(), false)

	total := 0.0
	for _, c := range commands {
		if c.Start {
			total += c.FlowM3H
		}
	}
	assert.LessOrEqual(t, total, 16000.0+1e-6)
	found := false
	for _, r := range resolved {
		if len(r) >= len("F2_EXCEEDED") && r[:len("F2_EXCEEDED")] == "F2_EXCEEDED" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_RuntimeHoldPreventsStop(t *testing.T) {
	model := pumpmodel.NewDefault()
	v := validator.New(model)
	tracker := runtime.NewTracker(pumpIDs(model), nil)
	now := time.Now()
	tracker.Commit([]kernel.PumpCommand{{PumpID: "P1", Start: true, FrequencyHz: 48}}, baseState(), now)

	tentative := []kernel.PumpCommand{
		{PumpID: "P1", Start: false},
		{PumpID: "P2", Start: true, FrequencyHz: 48},
	}
	commands, resolved := v.Validate(tentative, baseState(), tracker.Snapshot(), false)

	for _, c := range commands {
		if c.PumpID == "P1" {
			assert.True(t, c.Start)
		}
	}
	assert.Contains(t, resolved, "RUNTIME_HOLD_FORCED:P1")
}

func TestValidate_NeverProducesConstraintViolation(t *testing.T) {
	model := pumpmodel.NewDefault()
	v := validator.New(model)
	tracker := runtime.NewTracker(pumpIDs(model), nil)

	commands, _ := v.Validate(nil, baseState(), tracker.Snapshot(), false)

	total := 0.0
	anyRunning := false
	for _, c := range commands {
		require.Equal(t, c.Start, c.FrequencyHz > 0)
		if c.Start {
			anyRunning = true
			assert.True(t, c.FrequencyHz >= 47.8 && c.FrequencyHz <= 50)
			total += c.FlowM3H
		}
	}
	assert.True(t, anyRunning)
	assert.LessOrEqual(t, total, 16000.0+1e-6)
}

func TestValidate_VetoedSkipsSufficientFlowTopUp(t *testing.T) {
	model := pumpmodel.NewDefault()
	v := validator.New(model)
	tracker := runtime.NewTracker(pumpIDs(model), nil)

	state := kernel.SystemState{
		Timestamp:    time.Now(),
		L1M:          7.5,
		VM3:          80000,
		F1M3Per15Min: 1800,
	}
	tentative := []kernel.PumpCommand{
		{PumpID: "P1", Start: true, FrequencyHz: 50},
	}

	vetoedCommands, _ := v.Validate(tentative, state, tracker.Snapshot(), true)
	nonVetoedCommands, resolved := v.Validate(tentative, state, tracker.Snapshot(), false)

	vetoedRunning := 0
	for _, c := range vetoedCommands {
		if c.Start {
			vetoedRunning++
		}
	}
	nonVetoedRunning := 0
	for _, c := range nonVetoedCommands {
		if c.Start {
			nonVetoedRunning++
		}
	}

	assert.Equal(t, 1, vetoedRunning)
	assert.Greater(t, nonVetoedRunning, vetoedRunning)
	found := false
	for _, r := range resolved {
		if len(r) >= len("INSUFFICIENT_FLOW_ADDED") && r[:len("INSUFFICIENT_FLOW_ADDED")] == "INSUFFICIENT_FLOW_ADDED" {
			found = true
		}
	}
	assert.True(t, found)
}

func pumpIDs(model *pumpmodel.Model) []string {
	ids := make([]string, 0, len(model.Specs()))
	for id := range model.Specs() {
		ids = append(ids, id)
	}
	return ids
}
