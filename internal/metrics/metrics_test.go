package metrics_test

import (
	"testing"
	"time"

	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func TestCalculate_EnergyAndCost(t *testing.T) {
	commands := []kernel.PumpCommand{
		{PumpID: "P1", Start: true, FrequencyHz: 48.5, FlowM3H: 4000, PowerKW: 200, Efficiency: 0.8},
		{PumpID: "P2", Start: false},
	}
	calc := metrics.Calculate(commands, 0.15)

	assert.InDelta(t, 200.0, calc.TotalPowerKW, 1e-9)
	assert.InDelta(t, 50.0, calc.EnergyConsumedKWh, 1e-9)
	assert.InDelta(t, 7.5, calc.CostEUR, 1e-9)
	assert.InDelta(t, 1000.0, calc.FlowPumpedM3, 1e-9)
	assert.InDelta(t, 0.05, calc.SpecificEnergyKWhPerM3, 1e-9)
}

func TestCalculate_NegativePricePreservesSign(t *testing.T) {
	commands := []kernel.PumpCommand{
		{PumpID: "P1", Start: true, FrequencyHz: 48.5, FlowM3H: 4000, PowerKW: 200, Efficiency: 0.8},
	}
	calc := metrics.Calculate(commands, -0.05)
	assert.Less(t, calc.CostEUR, 0.0)
}

func TestCalculate_ZeroFlowGivesZeroSpecificEnergy(t *testing.T) {
	calc := metrics.Calculate(nil, 0.15)
	assert.Equal(t, 0.0, calc.SpecificEnergyKWhPerM3)
}

func TestCheckViolations_CleanDecisionHasNone(t *testing.T) {
	state := kernel.SystemState{Timestamp: time.Now(), L1M: 2.0}
	commands := []kernel.PumpCommand{
		{PumpID: "P1", Start: true, FrequencyHz: 48.0, FlowM3H: 4000, PowerKW: 200, Efficiency: 0.8},
	}
	violations := metrics.CheckViolations(commands, state)
	assert.Empty(t, violations)
}

func TestCheckViolations_FlagsF2Exceeded(t *testing.T) {
	state := kernel.SystemState{Timestamp: time.Now(), L1M: 2.0}
	commands := []kernel.PumpCommand{
		{PumpID: "P1", Start: true, FrequencyHz: 50, FlowM3H: 20000, PowerKW: 200, Efficiency: 0.8},
	}
	violations := metrics.CheckViolations(commands, state)
	require := assert.New(t)
	require.NotEmpty(violations)
	require.Equal("F2_EXCEEDED", violations[0].Type)
}
