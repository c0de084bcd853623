// Package driver implements C8: the single-writer, fan-out-fan-in
// orchestration of one decision tick (spec.md §4.8, §5).
package driver

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/aosanya/liftkernel/internal/agents"
	"github.com/aosanya/liftkernel/internal/coordinator"
	"github.com/aosanya/liftkernel/internal/forecast"
	"github.com/aosanya/liftkernel/internal/historical"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/metrics"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/aosanya/liftkernel/internal/runtime"
	"github.com/aosanya/liftkernel/internal/validator"
	"github.com/sirupsen/logrus"
)

const priceWindowSteps = 96

// Config wires every C1-C7 collaborator the driver orchestrates.
type Config struct {
	Model         *pumpmodel.Model
	Forecaster    *forecast.Forecaster
	Dataset       historical.Dataset
	Registry      *agents.Registry
	Coordinator   *coordinator.Coordinator
	Validator     *validator.Validator
	Tracker       *runtime.Tracker
	AgentDeadline time.Duration
	Logger        *logrus.Logger
}

// Driver executes ticks serially: at most one tick in flight at a time
// across the process (spec.md §5).
type Driver struct {
	mu            sync.Mutex
	model         *pumpmodel.Model
	forecaster    *forecast.Forecaster
	dataset       historical.Dataset
	registry      *agents.Registry
	coord         *coordinator.Coordinator
	valid         *validator.Validator
	tracker       *runtime.Tracker
	agentDeadline time.Duration
	logger        *logrus.Logger

	lastCommitted []kernel.PumpCommand
}

// New builds a Driver from its wired collaborators.
func New(cfg Config) *Driver {
	deadline := cfg.AgentDeadline
	if deadline <= 0 {
		deadline = 8 * time.Second
	}
	return &Driver{
		model:         cfg.Model,
		forecaster:    cfg.Forecaster,
		dataset:       cfg.Dataset,
		registry:      cfg.Registry,
		coord:         cfg.Coordinator,
		valid:         cfg.Validator,
		tracker:       cfg.Tracker,
		agentDeadline: deadline,
		logger:        cfg.Logger,
	}
}

// Decide implements decide(state) → Decision. It gates so that at most
// one tick runs at a time; a concurrent caller waits for the mutex
// rather than being rejected.
func (d *Driver) Decide(ctx context.Context, state kernel.SystemState) (kernel.Decision, error) {
	if err := validateState(state); err != nil {
		return kernel.Decision{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	trackerSnapshot := d.tracker.Snapshot()

	history, err := d.dataset.InflowWindow(ctx, state.HistoryIndex, d.forecasterWindow())
	if err != nil {
		history = nil
	}
	fc := d.forecaster.Forecast(state.HistoryIndex, history)

	priceWindow, err := d.priceWindow(ctx, state.HistoryIndex)
	if err != nil {
		priceWindow = []float64{state.ElectricityPriceEURPerKWh}
	}

	previousF2 := d.previousF2()

	assessInput := agents.AssessInput{
		State:          state,
		Forecast:       fc,
		Specs:          d.model.Specs(),
		Runtime:        trackerSnapshot,
		PriceWindow24h: priceWindow,
		PreviousF2M3H:  previousF2,
	}

	recommendations := agents.FanOut(ctx, d.registry, assessInput, d.agentDeadline, d.logger)

	tentative := d.coord.Synthesize(ctx, coordinator.Input{
		State:           state,
		Specs:           d.model.Specs(),
		Recommendations: recommendations,
	})

	finalCommands, rewrites := d.valid.Validate(tentative.Commands, state, trackerSnapshot, tentative.Vetoed)

	conflictsResolved := append(append([]string{}, tentative.ConflictsResolved...), rewrites...)

	costCalc := metrics.Calculate(finalCommands, state.ElectricityPriceEURPerKWh)
	violations := metrics.CheckViolations(finalCommands, state)

	now := state.Timestamp
	d.tracker.Commit(finalCommands, state, now)
	d.lastCommitted = finalCommands

	return kernel.Decision{
		Timestamp:            state.Timestamp,
		PumpCommands:         finalCommands,
		CoordinatorReasoning: tentative.Reasoning,
		PriorityApplied:      tentative.PriorityApplied,
		ConflictsResolved:    conflictsResolved,
		Confidence:           tentative.Confidence,
		CostCalculation:      costCalc,
		ConstraintViolations: violations,
		AgentMessages:        kernel.ToAgentMessages(recommendations),
	}, nil
}

// StateAt implements state_at(index) → SystemState.
func (d *Driver) StateAt(ctx context.Context, index int) (kernel.SystemState, error) {
	return d.dataset.StateAt(ctx, index)
}

func (d *Driver) forecasterWindow() int {
	return priceWindowSteps
}

func (d *Driver) previousF2() float64 {
	total := 0.0
	for _, c := range d.lastCommitted {
		if c.Start {
			total += c.FlowM3H
		}
	}
	return total
}

// priceWindow reads the trailing 24h of prices from the historical
// dataset, oldest first, clipping at the start of the dataset.
func (d *Driver) priceWindow(ctx context.Context, index int) ([]float64, error) {
	start := index - priceWindowSteps + 1
	if start < 0 {
		start = 0
	}
	window := make([]float64, 0, index-start+1)
	for i := start; i <= index; i++ {
		s, err := d.dataset.StateAt(ctx, i)
		if err != nil {
			continue
		}
		window = append(window, s.ElectricityPriceEURPerKWh)
	}
	if len(window) == 0 {
		return nil, historical.ErrOutOfRange
	}
	return window, nil
}

// validateState implements the spec.md §7 input-error fail-fast check.
func validateState(state kernel.SystemState) error {
	if math.IsNaN(state.L1M) || math.IsNaN(state.F1M3Per15Min) || math.IsNaN(state.ElectricityPriceEURPerKWh) {
		return kernel.ErrInvalidState
	}
	if state.L1M < 0 {
		return kernel.ErrInvalidState
	}
	if state.ElectricityPriceEURPerKWh < -1000 || state.ElectricityPriceEURPerKWh > 1000 {
		return kernel.ErrInvalidState
	}
	return nil
}
