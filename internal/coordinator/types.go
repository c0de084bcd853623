// Package coordinator implements C5: synthesis of the six specialist
// recommendations into a tentative pump plan, with an optional
// LLM-assisted path that falls back to the deterministic algorithm on
// any parse or validation failure (spec.md §4.5).
package coordinator

import "github.com/aosanya/liftkernel/internal/kernel"

// Agent names, mirroring the Specialist.Name() values in
// internal/agents. The coordinator depends only on these string tags,
// not on the agents package, to keep the dependency direction
// fan-out → coordinator.
const (
	AgentSafety     = "water_level_safety"
	AgentCompliance = "constraint_compliance"
	AgentCost       = "energy_cost"
	AgentEfficiency = "pump_efficiency"
	AgentSmoothness = "flow_smoothness"
	AgentInflow     = "inflow_forecasting"
)

// Input is everything the coordinator needs for one tick's synthesis.
type Input struct {
	State           kernel.SystemState
	Specs           map[string]kernel.PumpSpec
	Recommendations []kernel.Recommendation
}

// Output is the coordinator's tentative (pre-validator) result.
type Output struct {
	Commands          []kernel.PumpCommand
	Reasoning         string
	PriorityApplied   kernel.Priority
	ConflictsResolved []string
	Confidence        float64
	// Vetoed is true when Commands is a Safety/Compliance corrective
	// command set adopted verbatim (spec.md §4.5), as opposed to
	// PriorityApplied merely resting at CRITICAL for some other reason.
	// The validator uses this to skip rewrite 5 (spec.md §4.6).
	Vetoed bool
}

func findRecommendation(recs []kernel.Recommendation, agentName string) (kernel.Recommendation, bool) {
	for _, r := range recs {
		if r.AgentName == agentName {
			return r, true
		}
	}
	return kernel.Recommendation{}, false
}

func dataString(rec kernel.Recommendation, key string) (string, bool) {
	v, ok := rec.Data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func dataCommands(rec kernel.Recommendation, key string) ([]kernel.PumpCommand, bool) {
	v, ok := rec.Data[key]
	if !ok {
		return nil, false
	}
	c, ok := v.([]kernel.PumpCommand)
	return c, ok
}

func dataStringMap(rec kernel.Recommendation, key string) (map[string]float64, bool) {
	v, ok := rec.Data[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]float64)
	return m, ok
}

func dataStrings(rec kernel.Recommendation, key string) ([]string, bool) {
	v, ok := rec.Data[key]
	if !ok {
		return nil, false
	}
	s, ok := v.([]string)
	return s, ok
}

// stagedPlan is one tick of a Flow Smoothness staged plan: the pumps
// and combined flow to run delayTicks ticks from now (spec.md §4.4).
type stagedPlan struct {
	delayTicks int
	pumps      []string
	flow       float64
}

// dataStagedPlans decodes a Flow Smoothness "staged" array. Entries
// that don't carry the expected shape are skipped rather than failing
// the whole decode, since a malformed entry shouldn't block synthesis.
func dataStagedPlans(rec kernel.Recommendation, key string) ([]stagedPlan, bool) {
	v, ok := rec.Data[key]
	if !ok {
		return nil, false
	}
	raw, ok := v.([]map[string]interface{})
	if !ok {
		return nil, false
	}
	plans := make([]stagedPlan, 0, len(raw))
	for _, m := range raw {
		p := stagedPlan{}
		if dt, ok := m["delay_ticks"].(int); ok {
			p.delayTicks = dt
		}
		if pumps, ok := m["pumps"].([]string); ok {
			p.pumps = pumps
		}
		if flow, ok := m["flow"].(float64); ok {
			p.flow = flow
		}
		plans = append(plans, p)
	}
	return plans, true
}
