package coordinator

import (
	"fmt"
	"sort"

	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
)

// synthesizeDeterministic implements the canonical strategy of
// spec.md §4.5: veto short-circuit, then the five-step baseline
// construction.
func synthesizeDeterministic(in Input, model *pumpmodel.Model) Output {
	if out, ok := vetoOverride(in); ok {
		return out
	}

	commands, steps := buildBaseline(in, model)

	reasoning := fmt.Sprintf("Synthesized from %d recommendations via deterministic priority-weighted merge: %v.", len(in.Recommendations), steps)

	return Output{
		Commands:          commands,
		Reasoning:         reasoning,
		PriorityApplied:   highestPriority(in.Recommendations),
		ConflictsResolved: steps,
		Confidence:        averageConfidence(in.Recommendations),
	}
}

// vetoOverride adopts a vetoing agent's corrective command set
// verbatim when Safety or Compliance is CRITICAL with can_veto set.
func vetoOverride(in Input) (Output, bool) {
	for _, name := range []string{AgentSafety, AgentCompliance} {
		rec, ok := findRecommendation(in.Recommendations, name)
		if !ok || !rec.CanVeto || rec.Priority != kernel.PriorityCritical {
			continue
		}
		commands, ok := dataCommands(rec, "corrective_commands")
		if !ok || len(commands) == 0 {
			continue
		}
		return Output{
			Commands:          commands,
			Reasoning:         fmt.Sprintf("%s vetoed with a CRITICAL recommendation; its corrective command set was adopted verbatim.", name),
			PriorityApplied:   kernel.PriorityCritical,
			ConflictsResolved: []string{name + "_veto"},
			Confidence:        rec.Confidence,
			Vetoed:            true,
		}, true
	}
	return Output{}, false
}

// buildBaseline runs the five-step synthesis over non-veto recommendations.
func buildBaseline(in Input, model *pumpmodel.Model) ([]kernel.PumpCommand, []string) {
	var steps []string

	commands := efficiencyBaseline(in)
	steps = append(steps, "efficiency_baseline")

	if deferred, applied := applyCostDeferral(in, commands, model); applied {
		commands = deferred
		steps = append(steps, "cost_deferral_applied")
	}

	if staged, applied := applySmoothnessStaging(in, commands, model); applied {
		commands = staged
		steps = append(steps, "smoothness_staged")
	}

	if forced, applied := ensureAtLeastOneRunning(in, commands, model); applied {
		commands = forced
		steps = append(steps, "min_one_pump_forced")
	}

	commands = clipFrequencies(commands)

	return commands, steps
}

// efficiencyBaseline takes C4's Efficiency recommendation as the
// starting pump subset and frequencies (step 1).
func efficiencyBaseline(in Input) []kernel.PumpCommand {
	commands := stoppedAll(in.Specs)

	rec, ok := findRecommendation(in.Recommendations, AgentEfficiency)
	if !ok {
		return commands
	}
	pumps, _ := dataStrings(rec, "recommended_pumps")
	frequencies, _ := dataStringMap(rec, "frequencies")

	for i, c := range commands {
		for _, id := range pumps {
			if c.PumpID == id {
				commands[i].Start = true
				if f, ok := frequencies[id]; ok {
					commands[i].FrequencyHz = f
				} else {
					commands[i].FrequencyHz = 48.5
				}
			}
		}
	}
	return commands
}

// applyCostDeferral implements step 2: if Cost recommends deferral and
// Safety is SAFE (proxied by its priority resting at LOW), shrink the
// baseline to the single most efficient pump.
func applyCostDeferral(in Input, commands []kernel.PumpCommand, model *pumpmodel.Model) ([]kernel.PumpCommand, bool) {
	costRec, ok := findRecommendation(in.Recommendations, AgentCost)
	if !ok {
		return commands, false
	}
	recType, _ := dataString(costRec, "recommendation")
	if recType != "DEFER" {
		return commands, false
	}
	safetyRec, ok := findRecommendation(in.Recommendations, AgentSafety)
	if ok && safetyRec.Priority != kernel.PriorityLow {
		return commands, false
	}

	minID := singleMostEfficientID(in, model)
	if minID == "" {
		return commands, false
	}
	out := stoppedAll(in.Specs)
	for i, c := range out {
		if c.PumpID == minID {
			out[i].Start = true
			out[i].FrequencyHz = 47.8
		}
	}
	return out, true
}

// applySmoothnessStaging implements step 3: scale the baseline's
// running frequencies uniformly so their combined flow approaches this
// tick's entry in Smoothness's staged plan (delay_ticks == 0) instead
// of jumping straight to the baseline's total.
func applySmoothnessStaging(in Input, commands []kernel.PumpCommand, model *pumpmodel.Model) ([]kernel.PumpCommand, bool) {
	rec, ok := findRecommendation(in.Recommendations, AgentSmoothness)
	if !ok {
		return commands, false
	}
	plans, ok := dataStagedPlans(rec, "staged")
	if !ok || len(plans) == 0 {
		return commands, false
	}
	target := 0.0
	found := false
	for _, p := range plans {
		if p.delayTicks == 0 {
			target, found = p.flow, true
			break
		}
	}
	if !found || target <= 0 {
		return commands, false
	}

	total := 0.0
	for _, c := range commands {
		if c.Start {
			total += c.FrequencyHz
		}
	}
	if total == 0 {
		return commands, false
	}

	currentFlow := 0.0
	for _, c := range commands {
		if !c.Start {
			continue
		}
		if res, err := model.Performance(c.PumpID, c.FrequencyHz, in.State.L1M); err == nil {
			currentFlow += res.FlowM3H
		}
	}
	if currentFlow <= target || currentFlow == 0 {
		return commands, false
	}

	scale := target / currentFlow
	out := make([]kernel.PumpCommand, len(commands))
	copy(out, commands)
	for i, c := range out {
		if c.Start {
			out[i].FrequencyHz = c.FrequencyHz * scale
		}
	}
	return out, true
}

// ensureAtLeastOneRunning implements step 4.
func ensureAtLeastOneRunning(in Input, commands []kernel.PumpCommand, model *pumpmodel.Model) ([]kernel.PumpCommand, bool) {
	for _, c := range commands {
		if c.Start {
			return commands, false
		}
	}
	bestID := singleMostEfficientID(in, model)
	out := make([]kernel.PumpCommand, len(commands))
	copy(out, commands)
	for i, c := range out {
		if c.PumpID == bestID {
			out[i].Start = true
			out[i].FrequencyHz = 47.8
		}
	}
	return out, true
}

// clipFrequencies implements step 5; final performance recomputation
// happens in C6, not here.
func clipFrequencies(commands []kernel.PumpCommand) []kernel.PumpCommand {
	out := make([]kernel.PumpCommand, len(commands))
	copy(out, commands)
	for i, c := range out {
		if !c.Start {
			continue
		}
		if out[i].FrequencyHz < 47.8 {
			out[i].FrequencyHz = 47.8
		} else if out[i].FrequencyHz > 50 {
			out[i].FrequencyHz = 50
		}
	}
	return out
}

func stoppedAll(specs map[string]kernel.PumpSpec) []kernel.PumpCommand {
	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	commands := make([]kernel.PumpCommand, 0, len(ids))
	for _, id := range ids {
		commands = append(commands, kernel.PumpCommand{PumpID: id, Start: false})
	}
	return commands
}

// singleMostEfficientID finds the pump with the highest efficiency at
// the minimum running frequency and the current tunnel level, the
// same flow floor the Efficiency specialist itself uses.
func singleMostEfficientID(in Input, model *pumpmodel.Model) string {
	bestID, bestEff := "", -1.0
	ids := make([]string, 0, len(in.Specs))
	for id := range in.Specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		res, err := model.Performance(id, 47.8, in.State.L1M)
		if err != nil {
			continue
		}
		if res.Efficiency > bestEff {
			bestEff, bestID = res.Efficiency, id
		}
	}
	return bestID
}

func highestPriority(recs []kernel.Recommendation) kernel.Priority {
	highest := kernel.PriorityLow
	for _, r := range recs {
		if r.Priority.Outranks(highest) {
			highest = r.Priority
		}
	}
	return highest
}

func averageConfidence(recs []kernel.Recommendation) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range recs {
		sum += r.Confidence
	}
	return sum / float64(len(recs))
}
