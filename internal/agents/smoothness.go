package agents

import (
	"context"
	"fmt"

	"github.com/aosanya/liftkernel/internal/ai"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
)

// flowStepWarnM3H is the |ΔF2| threshold above which a one-tick change
// should be staged over two ticks instead of applied immediately.
const flowStepWarnM3H = 2000.0

// flowStepHighM3H is the threshold above which the step itself is
// treated as a MEDIUM priority concern, not just staged.
const flowStepHighM3H = 4000.0

// SmoothnessAgent guards against abrupt outflow step changes. It does
// not read the Efficiency specialist's recommendation directly (agents
// stay independent, spec.md §4.4); instead it re-derives its own
// required-flow estimate the same way Efficiency does and compares
// that against the previously committed F2.
type SmoothnessAgent struct {
	model *pumpmodel.Model
	llm   ai.LLMClient
}

// NewSmoothnessAgent builds the flow smoothness specialist.
func NewSmoothnessAgent(model *pumpmodel.Model, llm ai.LLMClient) *SmoothnessAgent {
	return &SmoothnessAgent{model: model, llm: llm}
}

func (a *SmoothnessAgent) Name() string { return "flow_smoothness" }

func (a *SmoothnessAgent) Assess(ctx context.Context, in AssessInput) kernel.Recommendation {
	proposed := requiredFlowM3H(in, a.model)
	delta := proposed - in.PreviousF2M3H
	absDelta := absFloat(delta)

	isStaged := absDelta > flowStepWarnM3H
	priority := kernel.PriorityLow
	if absDelta > flowStepHighM3H {
		priority = kernel.PriorityMedium
	}

	var staged []map[string]interface{}
	if isStaged {
		step := flowStepWarnM3H
		if delta < 0 {
			step = -step
		}
		firstTick := in.PreviousF2M3H + step
		staged = []map[string]interface{}{
			stagedPlanEntry(in, a.model, 0, firstTick),
			stagedPlanEntry(in, a.model, 1, proposed),
		}
	}

	fallback := fmt.Sprintf(
		"Proposed outflow %.0f m3/h is a step of %.0f m3/h from the previous %.0f m3/h; staging: %v.",
		proposed, delta, in.PreviousF2M3H, isStaged,
	)
	reasoning := narrate(ctx, a.llm,
		"You are the flow smoothness specialist for a wastewater lift station. Explain the outflow step change in two sentences.",
		fallback, fallback,
	)

	return kernel.Recommendation{
		AgentName:          a.Name(),
		Priority:           priority,
		Confidence:         0.7,
		RecommendationType: "flow_smoothness",
		Reasoning:          reasoning,
		Data: map[string]interface{}{
			"flow_variability": absDelta,
			"max_step_m3h":     flowStepWarnM3H,
			"staged":           staged,
		},
	}
}

// stagedPlanEntry picks the pump subset that best matches targetFlow
// the same way the efficiency specialist does, and packages it as one
// tick of a staged plan (spec.md §4.4).
func stagedPlanEntry(in AssessInput, model *pumpmodel.Model, delayTicks int, targetFlow float64) map[string]interface{} {
	option := searchBestCombination(in, model, targetFlow)
	return map[string]interface{}{
		"delay_ticks": delayTicks,
		"pumps":       option.pumps,
		"flow":        option.totalFlow,
	}
}
