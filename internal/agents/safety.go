package agents

import (
	"context"
	"fmt"

	"github.com/aosanya/liftkernel/internal/ai"
	"github.com/aosanya/liftkernel/internal/constraints"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
)

// SafetyState is the Water Level Safety specialist's classification.
type SafetyState string

const (
	SafetySafe     SafetyState = "SAFE"
	SafetyWatch    SafetyState = "WATCH"
	SafetyRisk     SafetyState = "RISK"
	SafetyCritical SafetyState = "CRITICAL"
)

const projectionTicks = 4

// assumedRunningFrequencyHz is the frequency the safety specialist
// assumes for pumps the runtime tracker shows as currently running,
// since RuntimeTracker only records start time, not a prior command's
// frequency (spec.md §3).
const assumedRunningFrequencyHz = 48.5

// SafetyAgent projects the tunnel level forward and can veto.
type SafetyAgent struct {
	model *pumpmodel.Model
	llm   ai.LLMClient
}

// NewSafetyAgent builds the water level safety specialist.
func NewSafetyAgent(model *pumpmodel.Model, llm ai.LLMClient) *SafetyAgent {
	return &SafetyAgent{model: model, llm: llm}
}

func (a *SafetyAgent) Name() string { return "water_level_safety" }

func (a *SafetyAgent) Assess(ctx context.Context, in AssessInput) kernel.Recommendation {
	trajectory := a.projectLevel(in)
	state, crossed6, crossed72 := classifySafety(in.State.L1M, trajectory)

	priority := kernel.PriorityLow
	canVeto := false
	switch state {
	case SafetyWatch:
		priority = kernel.PriorityMedium
	case SafetyRisk:
		priority = kernel.PriorityHigh
		canVeto = true
	case SafetyCritical:
		priority = kernel.PriorityCritical
		canVeto = true
	}

	requiredPumps := 0
	var corrective []kernel.PumpCommand
	if canVeto {
		margin := 1.5
		if state == SafetyCritical {
			margin = 3.0
		}
		requiredPumps = pumpsNeededToReverse(in, a.model, margin)
		corrective = a.correctiveCommands(in, requiredPumps)
	}

	fallback := fmt.Sprintf(
		"Level is %.2fm, classified %s over a %d-tick projection (crosses 6m: %v, crosses 7.2m: %v).",
		in.State.L1M, state, projectionTicks, crossed6, crossed72,
	)
	reasoning := narrate(ctx, a.llm,
		"You are the water level safety specialist for a wastewater lift station. Explain the level trajectory risk in two sentences.",
		fallback, fallback,
	)

	return kernel.Recommendation{
		AgentName:          a.Name(),
		Priority:           priority,
		Confidence:         0.9,
		RecommendationType: "water_level_safety",
		Reasoning:          reasoning,
		CanVeto:            canVeto,
		Data: map[string]interface{}{
			"state":                state,
			"projected_trajectory": trajectory,
			"required_pump_count":  requiredPumps,
			"corrective_commands":  corrective,
		},
	}
}

// correctiveCommands runs the n highest-flow pumps at full frequency
// (the same ordering pumpsNeededToReverse counts in),
// the concrete command set the coordinator adopts verbatim on a veto
// (spec.md §4.5).
func (a *SafetyAgent) correctiveCommands(in AssessInput, n int) []kernel.PumpCommand {
	type perf struct {
		id  string
		res pumpmodel.Result
	}
	ids := sortedSpecIDs(in.Specs)

	var perfs []perf
	for _, id := range ids {
		res, err := a.model.Performance(id, 50, in.State.L1M)
		if err == nil {
			perfs = append(perfs, perf{id: id, res: res})
		}
	}
	for i := 0; i < len(perfs); i++ {
		for j := i + 1; j < len(perfs); j++ {
			if perfs[j].res.FlowM3H > perfs[i].res.FlowM3H {
				perfs[i], perfs[j] = perfs[j], perfs[i]
			}
		}
	}

	run := map[string]bool{}
	for i := 0; i < n && i < len(perfs); i++ {
		run[perfs[i].id] = true
	}

	commands := make([]kernel.PumpCommand, 0, len(ids))
	for _, id := range ids {
		start := run[id]
		freq := 0.0
		if start {
			freq = 50.0
		}
		res, err := a.model.Performance(id, freq, in.State.L1M)
		if err != nil {
			continue
		}
		commands = append(commands, kernel.PumpCommand{
			PumpID:      id,
			Start:       start,
			FrequencyHz: freq,
			FlowM3H:     res.FlowM3H,
			PowerKW:     res.PowerKW,
			Efficiency:  res.Efficiency,
		})
	}
	return commands
}

// projectLevel simulates the tunnel level forward under the pumps
// currently running and the forecasted inflow.
func (a *SafetyAgent) projectLevel(in AssessInput) []float64 {
	area := tunnelAreaM2(in.State)
	currentOutflowM3H := 0.0
	for id := range in.Specs {
		if !in.Runtime.IsRunning(id) {
			continue
		}
		res, err := a.model.Performance(id, assumedRunningFrequencyHz, in.State.L1M)
		if err == nil {
			currentOutflowM3H += res.FlowM3H
		}
	}

	trajectory := make([]float64, 0, projectionTicks)
	level := in.State.L1M
	volume := in.State.VM3
	for i := 0; i < projectionTicks; i++ {
		inflow := in.State.F1M3Per15Min
		if i < len(in.Forecast.Next6h) {
			inflow = in.Forecast.Next6h[i]
		}
		outflowPerTick := currentOutflowM3H * 0.25
		volume += inflow - outflowPerTick
		if volume < 0 {
			volume = 0
		}
		level = volume / area
		trajectory = append(trajectory, level)
	}
	return trajectory
}

func tunnelAreaM2(state kernel.SystemState) float64 {
	if state.L1M > 0.01 && state.VM3 > 0 {
		return state.VM3 / state.L1M
	}
	return 10000.0
}

func classifySafety(currentL1 float64, trajectory []float64) (SafetyState, bool, bool) {
	if currentL1 >= constraints.L1Alarm {
		return SafetyCritical, true, true
	}

	crossed8, crossed72, crossed6 := false, false, false
	for _, l := range trajectory {
		if l >= constraints.L1Max {
			crossed8 = true
		}
		if l >= constraints.L1Alarm {
			crossed72 = true
		}
		if l >= 6.0 {
			crossed6 = true
		}
	}

	switch {
	case crossed8:
		return SafetyCritical, crossed6, crossed72
	case crossed72:
		return SafetyRisk, crossed6, crossed72
	case crossed6:
		return SafetyWatch, crossed6, crossed72
	default:
		return SafetySafe, crossed6, crossed72
	}
}

// pumpsNeededToReverse finds the smallest pump count, at full
// frequency, whose combined flow exceeds the near-term forecasted
// inflow rate scaled by a severity margin: the worse the
// classification, the faster the tunnel must be drawn down, not just
// held level.
func pumpsNeededToReverse(in AssessInput, model *pumpmodel.Model, margin float64) int {
	inflowM3H := in.State.F1M3Per15Min * 4
	if len(in.Forecast.Next6h) > 0 {
		inflowM3H = in.Forecast.Next6h[0] * 4
	}
	inflowM3H *= margin

	type perf struct {
		flow float64
	}
	var perfs []perf
	for _, id := range sortedSpecIDs(in.Specs) {
		res, err := model.Performance(id, 50, in.State.L1M)
		if err == nil {
			perfs = append(perfs, perf{flow: res.FlowM3H})
		}
	}
	// simple descending sort by flow
	for i := 0; i < len(perfs); i++ {
		for j := i + 1; j < len(perfs); j++ {
			if perfs[j].flow > perfs[i].flow {
				perfs[i], perfs[j] = perfs[j], perfs[i]
			}
		}
	}

	total, count := 0.0, 0
	for _, p := range perfs {
		if total > inflowM3H {
			break
		}
		total += p.flow
		count++
	}
	if count == 0 {
		count = 1
	}
	return count
}

func sortedSpecIDs(specs map[string]kernel.PumpSpec) []string {
	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	return ids
}
