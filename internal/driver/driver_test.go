package driver_test

import (
	"context"
	"testing"
	"time"

	"github.com/aosanya/liftkernel/internal/agents"
	"github.com/aosanya/liftkernel/internal/coordinator"
	"github.com/aosanya/liftkernel/internal/driver"
	"github.com/aosanya/liftkernel/internal/forecast"
	"github.com/aosanya/liftkernel/internal/historical"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/aosanya/liftkernel/internal/runtime"
	"github.com/aosanya/liftkernel/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDriver(t *testing.T, rows []kernel.SystemState) *driver.Driver {
	t.Helper()
	model := pumpmodel.NewDefault()
	fc := forecast.New(forecast.DefaultModel())
	dataset := historical.NewMemoryDataset(rows)
	ids := make([]string, 0, len(model.Specs()))
	for id := range model.Specs() {
		ids = append(ids, id)
	}
	tracker := runtime.NewTracker(ids, nil)

	registry := agents.NewRegistry(
		agents.NewInflowAgent(nil),
		agents.NewCostAgent(nil),
		agents.NewEfficiencyAgent(model, nil),
		agents.NewSafetyAgent(model, nil),
		agents.NewSmoothnessAgent(model, nil),
		agents.NewComplianceAgent(model, nil),
	)

	coord := coordinator.New(coordinator.Config{Model: model})
	v := validator.New(model)

	return driver.New(driver.Config{
		Model:         model,
		Forecaster:    fc,
		Dataset:       dataset,
		Registry:      registry,
		Coordinator:   coord,
		Validator:     v,
		Tracker:       tracker,
		AgentDeadline: 2 * time.Second,
	})
}

func makeRows(n int, price float64) []kernel.SystemState {
	rows := make([]kernel.SystemState, n)
	for i := range rows {
		rows[i] = kernel.SystemState{
			Timestamp:                 time.Now().Add(time.Duration(i) * 15 * time.Minute),
			L1M:                       2.0,
			VM3:                       20000,
			F1M3Per15Min:              1000,
			F2M3H:                     4000,
			ElectricityPriceEURPerKWh: price,
			PriceScenario:             kernel.ScenarioNormal,
			HistoryIndex:              i,
		}
	}
	return rows
}

func TestDecide_StableDryWeather(t *testing.T) {
	rows := makeRows(100, 0.14)
	d := buildDriver(t, rows)

	state := kernel.SystemState{
		Timestamp:                 time.Now(),
		L1M:                       1.82,
		VM3:                       5405,
		F1M3Per15Min:              1708,
		F2M3H:                     6980,
		ElectricityPriceEURPerKWh: 0.14,
		PriceScenario:             kernel.ScenarioNormal,
		HistoryIndex:              99,
	}

	decision, err := d.Decide(context.Background(), state)
	require.NoError(t, err)

	assert.Empty(t, decision.ConstraintViolations)
	anyRunning := false
	total := 0.0
	for _, c := range decision.PumpCommands {
		if c.Start {
			anyRunning = true
			total += c.FlowM3H
		}
	}
	assert.True(t, anyRunning)
	assert.LessOrEqual(t, total, 16000.0+1e-6)
}

func TestDecide_SafetyOverride(t *testing.T) {
	rows := makeRows(100, 0.50)
	d := buildDriver(t, rows)

	state := kernel.SystemState{
		Timestamp:                 time.Now(),
		L1M:                       7.5,
		VM3:                       80000,
		F1M3Per15Min:              1800,
		F2M3H:                     4000,
		ElectricityPriceEURPerKWh: 0.50,
		PriceScenario:             kernel.ScenarioNormal,
		HistoryIndex:              99,
	}

	decision, err := d.Decide(context.Background(), state)
	require.NoError(t, err)

	running := 0
	for _, c := range decision.PumpCommands {
		if c.Start {
			running++
		}
	}
	assert.GreaterOrEqual(t, running, 3)
	assert.Equal(t, kernel.PriorityCritical, decision.PriorityApplied)
}

func TestDecide_RejectsInvalidState(t *testing.T) {
	rows := makeRows(10, 0.14)
	d := buildDriver(t, rows)

	_, err := d.Decide(context.Background(), kernel.SystemState{L1M: -1})
	assert.ErrorIs(t, err, kernel.ErrInvalidState)
}

func TestDecide_ColdStartForecastStillProducesFeasibleDecision(t *testing.T) {
	rows := makeRows(1, 0.14)
	d := buildDriver(t, rows)

	state := rows[0]
	state.HistoryIndex = 0

	decision, err := d.Decide(context.Background(), state)
	require.NoError(t, err)
	assert.Empty(t, decision.ConstraintViolations)
}

func TestDecide_IsIdempotentForSameStateAndTrackerSnapshot(t *testing.T) {
	rows := makeRows(100, 0.14)
	d1 := buildDriver(t, rows)
	d2 := buildDriver(t, rows)

	state := kernel.SystemState{
		Timestamp:                 time.Now(),
		L1M:                       1.82,
		VM3:                       5405,
		F1M3Per15Min:              1708,
		F2M3H:                     6980,
		ElectricityPriceEURPerKWh: 0.14,
		HistoryIndex:              99,
	}

	dec1, err1 := d1.Decide(context.Background(), state)
	dec2, err2 := d2.Decide(context.Background(), state)
	require.NoError(t, err1)
	require.NoError(t, err2)

	assert.Equal(t, dec1.PumpCommands, dec2.PumpCommands)
}
