// Package validator implements C6: the deterministic feasibility
// rewrites that guarantee every decision is feasible regardless of
// what the coordinator proposed. It never fails.
package validator

import (
	"math"
	"sort"

	"github.com/aosanya/liftkernel/internal/constraints"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/aosanya/liftkernel/internal/runtime"
)

// Validator applies the ordered rewrites of spec.md §4.6.
type Validator struct {
	model *pumpmodel.Model
}

// New builds a Validator around the shared pump model.
func New(model *pumpmodel.Model) *Validator {
	return &Validator{model: model}
}

// Validate rewrites tentative into a feasible command set, recording
// every rewrite it had to apply. vetoed reports whether the tentative
// set came from a Safety/Compliance veto adopted verbatim by the
// coordinator (spec.md §4.5); when true, rewrite 5 (ensureSufficientFlow)
// is skipped, since Safety already chose the corrective command set
// deliberately and the validator must not pile pumps on top of it
// (spec.md §4.6 rewrite 5).
func (v *Validator) Validate(tentative []kernel.PumpCommand, state kernel.SystemState, tracker runtime.Snapshot, vetoed bool) ([]kernel.PumpCommand, []string) {
	commands := v.complete(tentative)
	var resolved []string

	commands, r := v.clampFrequencies(commands)
	resolved = append(resolved, r...)

	commands, r = v.ensureOnePump(commands, state)
	resolved = append(resolved, r...)
	commands = v.recompute(commands, state.L1M)

	commands, r = v.capTotalFlow(commands, state)
	resolved = append(resolved, r...)

	commands, r = v.enforceRuntimeHold(commands, tracker)
	resolved = append(resolved, r...)

	if !vetoed {
		commands = v.recompute(commands, state.L1M)
		commands, r = v.ensureSufficientFlow(commands, state)
		resolved = append(resolved, r...)
	}

	commands = v.recompute(commands, state.L1M)

	sort.Slice(commands, func(i, j int) bool { return commands[i].PumpID < commands[j].PumpID })
	return commands, resolved
}

// complete fills in any pump the tentative set omitted, as stopped.
func (v *Validator) complete(tentative []kernel.PumpCommand) []kernel.PumpCommand {
	seen := make(map[string]kernel.PumpCommand, len(tentative))
	for _, c := range tentative {
		seen[c.PumpID] = c
	}
	commands := make([]kernel.PumpCommand, 0, len(v.model.Specs()))
	for _, id := range sortedIDs(v.model.Specs()) {
		if c, ok := seen[id]; ok {
			commands = append(commands, c)
		} else {
			commands = append(commands, kernel.PumpCommand{PumpID: id, Start: false})
		}
	}
	return commands
}

func sortedIDs(specs map[string]kernel.PumpSpec) []string {
	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// clampFrequencies implements rewrite 1.
func (v *Validator) clampFrequencies(commands []kernel.PumpCommand) ([]kernel.PumpCommand, []string) {
	var resolved []string
	for i, c := range commands {
		if !c.Start {
			continue
		}
		if math.IsNaN(c.FrequencyHz) || c.FrequencyHz < 0 {
			commands[i].Start = false
			commands[i].FrequencyHz = 0
			resolved = append(resolved, "FREQ_INVALID_STOPPED:"+c.PumpID)
			continue
		}
		if c.FrequencyHz < constraints.FreqMin {
			commands[i].FrequencyHz = constraints.FreqMin
			resolved = append(resolved, "FREQ_CLAMPED_MIN:"+c.PumpID)
		} else if c.FrequencyHz > constraints.FreqMax {
			commands[i].FrequencyHz = constraints.FreqMax
			resolved = append(resolved, "FREQ_CLAMPED_MAX:"+c.PumpID)
		}
	}
	return commands, resolved
}

// ensureOnePump implements rewrite 2.
func (v *Validator) ensureOnePump(commands []kernel.PumpCommand, state kernel.SystemState) ([]kernel.PumpCommand, []string) {
	for _, c := range commands {
		if c.Start {
			return commands, nil
		}
	}
	bestID, bestEff := "", -1.0
	for _, id := range sortedIDs(v.model.Specs()) {
		res, err := v.model.Performance(id, constraints.FreqMin, state.L1M)
		if err != nil {
			continue
		}
		if res.Efficiency > bestEff {
			bestEff, bestID = res.Efficiency, id
		}
	}
	for i, c := range commands {
		if c.PumpID == bestID {
			commands[i].Start = true
			commands[i].FrequencyHz = constraints.FreqMin
		}
	}
	return commands, []string{"min_one_pump_forced"}
}

// capTotalFlow implements rewrite 3: iteratively step down the
// least-efficient running pump's frequency, then stop it, until the
// combined flow is under the F2 cap.
func (v *Validator) capTotalFlow(commands []kernel.PumpCommand, state kernel.SystemState) ([]kernel.PumpCommand, []string) {
	var resolved []string
	for {
		total := 0.0
		for _, c := range commands {
			if c.Start {
				total += c.FlowM3H
			}
		}
		if total <= constraints.F2Max {
			return commands, resolved
		}

		idx := leastEfficientRunning(commands)
		if idx < 0 {
			return commands, resolved
		}
		if commands[idx].FrequencyHz > constraints.FreqMin {
			commands[idx].FrequencyHz -= constraints.FreqStepHz
			if commands[idx].FrequencyHz < constraints.FreqMin {
				commands[idx].FrequencyHz = constraints.FreqMin
			}
		} else {
			commands[idx].Start = false
			commands[idx].FrequencyHz = 0
		}
		commands = v.recompute(commands, state.L1M)
		resolved = append(resolved, "F2_EXCEEDED:"+commands[idx].PumpID)
	}
}

func leastEfficientRunning(commands []kernel.PumpCommand) int {
	idx, worst := -1, math.Inf(1)
	for i, c := range commands {
		if c.Start && c.Efficiency < worst {
			worst, idx = c.Efficiency, i
		}
	}
	return idx
}

// enforceRuntimeHold implements rewrite 4: a pump that has run under
// its minimum hold may not be stopped this tick.
func (v *Validator) enforceRuntimeHold(commands []kernel.PumpCommand, tracker runtime.Snapshot) ([]kernel.PumpCommand, []string) {
	var resolved []string
	for i, c := range commands {
		pr, ok := tracker.Pumps[c.PumpID]
		if !ok || pr.StartedAt == nil {
			continue
		}
		if pr.CumulativeRuntimeSeconds >= int64(constraints.MinRunningHold.Seconds()) {
			continue
		}
		if !c.Start {
			commands[i].Start = true
			freq := c.FrequencyHz
			if freq <= 0 {
				freq = constraints.FreqMin
			}
			if freq < constraints.FreqMin {
				freq = constraints.FreqMin
			}
			if freq > constraints.FreqMax {
				freq = constraints.FreqMax
			}
			commands[i].FrequencyHz = freq
			resolved = append(resolved, "RUNTIME_HOLD_FORCED:"+c.PumpID)
		}
	}
	return commands, resolved
}

// ensureSufficientFlow implements rewrite 5: add the next-best
// efficiency pump at full frequency until the projected next-tick
// level is at or under 7.0 m, or every pump is running.
func (v *Validator) ensureSufficientFlow(commands []kernel.PumpCommand, state kernel.SystemState) ([]kernel.PumpCommand, []string) {
	var resolved []string
	area := tunnelAreaM2(state)
	for {
		outflow := 0.0
		for _, c := range commands {
			if c.Start {
				outflow += c.FlowM3H
			}
		}
		projectedVolume := state.VM3 + state.F1M3Per15Min - outflow*0.25
		if projectedVolume < 0 {
			projectedVolume = 0
		}
		projectedL1 := projectedVolume / area
		if projectedL1 <= 7.0 {
			return commands, resolved
		}

		idx := bestStoppedPump(commands, v.model, state.L1M)
		if idx < 0 {
			return commands, resolved
		}
		addedFlow, err := v.model.Performance(commands[idx].PumpID, constraints.FreqMax, state.L1M)
		if err != nil || outflow+addedFlow.FlowM3H > constraints.F2Max {
			// Adding this pump would itself violate the F2 cap; the cap
			// is a hard limit, so the projection is accepted as-is.
			return commands, resolved
		}
		commands[idx].Start = true
		commands[idx].FrequencyHz = constraints.FreqMax
		commands = v.recompute(commands, state.L1M)
		resolved = append(resolved, "INSUFFICIENT_FLOW_ADDED:"+commands[idx].PumpID)
	}
}

func bestStoppedPump(commands []kernel.PumpCommand, model *pumpmodel.Model, l1M float64) int {
	idx, bestEff := -1, -1.0
	for i, c := range commands {
		if c.Start {
			continue
		}
		res, err := model.Performance(c.PumpID, constraints.FreqMax, l1M)
		if err != nil {
			continue
		}
		if res.Efficiency > bestEff {
			bestEff, idx = res.Efficiency, i
		}
	}
	return idx
}

func tunnelAreaM2(state kernel.SystemState) float64 {
	if state.L1M > 0.01 && state.VM3 > 0 {
		return state.VM3 / state.L1M
	}
	return 10000.0
}

// recompute re-derives flow/power/efficiency for every command via C1,
// the final step of spec.md §4.6.
func (v *Validator) recompute(commands []kernel.PumpCommand, l1M float64) []kernel.PumpCommand {
	out := make([]kernel.PumpCommand, len(commands))
	for i, c := range commands {
		freq := 0.0
		if c.Start {
			freq = c.FrequencyHz
		}
		res, err := v.model.Performance(c.PumpID, freq, l1M)
		if err != nil {
			out[i] = kernel.PumpCommand{PumpID: c.PumpID, Start: false}
			continue
		}
		out[i] = kernel.PumpCommand{
			PumpID:      c.PumpID,
			Start:       c.Start,
			FrequencyHz: freq,
			FlowM3H:     res.FlowM3H,
			PowerKW:     res.PowerKW,
			Efficiency:  res.Efficiency,
		}
	}
	return out
}
