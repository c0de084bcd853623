package agents

import (
	"context"
	"fmt"
	"sort"

	"github.com/aosanya/liftkernel/internal/ai"
	"github.com/aosanya/liftkernel/internal/constraints"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
)

// ComplianceAgent checks the current tick against the hard constraints
// of C2. It does not read sibling recommendations (agents stay
// independent, spec.md §4.4); instead it validates the shared
// AssessInput — SystemState plus the RuntimeTracker snapshot — which
// is the closest independence-preserving reading of "the proposal
// visible in shared context" its contract describes.
type ComplianceAgent struct {
	model *pumpmodel.Model
	llm   ai.LLMClient
}

// NewComplianceAgent builds the constraint compliance specialist.
func NewComplianceAgent(model *pumpmodel.Model, llm ai.LLMClient) *ComplianceAgent {
	return &ComplianceAgent{model: model, llm: llm}
}

func (a *ComplianceAgent) Name() string { return "constraint_compliance" }

func (a *ComplianceAgent) Assess(ctx context.Context, in AssessInput) kernel.Recommendation {
	var violations []string

	if in.State.L1M < constraints.L1Min || in.State.L1M > constraints.L1Max {
		violations = append(violations, fmt.Sprintf("L1 %.2fm outside [%.1f, %.1f]", in.State.L1M, constraints.L1Min, constraints.L1Max))
	}
	if in.State.F2M3H > constraints.F2Max {
		violations = append(violations, fmt.Sprintf("F2 %.0f m3/h exceeds cap %.0f", in.State.F2M3H, constraints.F2Max))
	}

	emptyingOverdue := a.emptyingOverdue(in)
	if emptyingOverdue {
		violations = append(violations, "dry-weather daily emptying rule overdue")
	}

	heldPumps := a.heldPumps(in)

	priority := kernel.PriorityLow
	canVeto := false
	var corrective []kernel.PumpCommand
	if len(violations) > 0 {
		priority = kernel.PriorityCritical
		canVeto = true
		corrective = a.correctiveCommands(in, emptyingOverdue)
	}

	fallback := fmt.Sprintf("Found %d constraint violation(s); %d pump(s) still within their minimum-run hold.", len(violations), len(heldPumps))
	reasoning := narrate(ctx, a.llm,
		"You are the constraint compliance specialist for a wastewater lift station. Summarize rule compliance in two sentences.",
		fallback, fallback,
	)

	return kernel.Recommendation{
		AgentName:          a.Name(),
		Priority:           priority,
		Confidence:         1.0,
		RecommendationType: "constraint_compliance",
		Reasoning:          reasoning,
		CanVeto:            canVeto,
		Data: map[string]interface{}{
			"violations":          violations,
			"held_pumps":          heldPumps,
			"corrective_commands": corrective,
		},
	}
}

// emptyingOverdue reports whether dry weather has persisted without
// the tunnel level crossing below the empty target within the rolling
// window (Open Question resolved in SPEC_FULL.md §3).
func (a *ComplianceAgent) emptyingOverdue(in AssessInput) bool {
	if !constraints.IsDryWeather(in.State.F1M3Per15Min) {
		return false
	}
	last := in.Runtime.LastEmptyBelow05mAt
	if last == nil {
		return true
	}
	return in.State.Timestamp.Sub(*last) > constraints.EmptyingWindow
}

// heldPumps lists the pumps the runtime tracker shows still inside
// their minimum-run hold window.
func (a *ComplianceAgent) heldPumps(in AssessInput) []string {
	var held []string
	for id := range in.Specs {
		if in.Runtime.HeldRunning(id, constraints.MinRunningHold, in.State.Timestamp) {
			held = append(held, id)
		}
	}
	sort.Strings(held)
	return held
}

// correctiveCommands builds a concrete pump plan that would restore
// compliance: if the emptying rule is overdue, run the single most
// efficient pump at minimum frequency until the tunnel drains; any
// pump already held by its minimum-run hold is kept running.
func (a *ComplianceAgent) correctiveCommands(in AssessInput, emptyingOverdue bool) []kernel.PumpCommand {
	var commands []kernel.PumpCommand

	held := map[string]bool{}
	for _, id := range a.heldPumps(in) {
		held[id] = true
	}

	runSet := map[string]bool{}
	if emptyingOverdue {
		bestEff, bestID := -1.0, ""
		for _, id := range sortedSpecIDs(in.Specs) {
			res, err := a.model.Performance(id, constraints.FreqMin, in.State.L1M)
			if err != nil {
				continue
			}
			if res.Efficiency > bestEff {
				bestEff, bestID = res.Efficiency, id
			}
		}
		if bestID != "" {
			runSet[bestID] = true
		}
	}
	for id := range held {
		runSet[id] = true
	}

	ids := make([]string, 0, len(in.Specs))
	for id := range in.Specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		start := runSet[id]
		freq := 0.0
		if start {
			freq = constraints.FreqMin
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
