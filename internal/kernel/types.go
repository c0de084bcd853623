// Package kernel holds the data model shared by every stage of the
// per-tick decision pipeline: system state, pump specs and commands,
// specialist recommendations, and the final decision.
package kernel

import "time"

// PriceScenario selects the electricity tariff regime in effect for a tick.
type PriceScenario string

const (
	ScenarioNormal PriceScenario = "normal"
	ScenarioHigh   PriceScenario = "high"
)

// SystemState is the immutable input to a single decision tick.
type SystemState struct {
	Timestamp               time.Time     `json:"timestamp"`
	L1M                      float64       `json:"L1_m"`
	VM3                      float64       `json:"V_m3"`
	F1M3Per15Min             float64       `json:"F1_m3_per_15min"`
	F2M3H                     float64       `json:"F2_m3h"`
	ElectricityPriceEURPerKWh float64      `json:"electricity_price_eur_kwh"`
	PriceScenario            PriceScenario `json:"price_scenario"`
	HistoryIndex             int           `json:"history_index"`
}

// PumpClass distinguishes the two pump capacity tiers at the station.
type PumpClass string

const (
	PumpClassLarge PumpClass = "large"
	PumpClassSmall PumpClass = "small"
)

// CurvePoint is one sample of a pump's efficiency curve at a given flow.
type CurvePoint struct {
	FlowM3H    float64
	Efficiency float64
}

// PumpSpec describes one physical pump, static for the process lifetime.
type PumpSpec struct {
	PumpID             string
	Class              PumpClass
	RatedPowerKW       float64
	RatedFlowM3H       float64
	OptimalFrequencyHz float64
	RatedHeadM         float64
	// Curve is the efficiency-vs-flow table at rated frequency; nil
	// means no curve data is available and the affinity-only fallback
	// applies.
	Curve []CurvePoint
}

// PumpCommand is one pump's instruction for the tick, with performance
// fields derived by the pump model at emission time.
type PumpCommand struct {
	PumpID      string  `json:"pump_id"`
	Start       bool    `json:"start"`
	FrequencyHz float64 `json:"frequency"`
	FlowM3H     float64 `json:"flow_m3h"`
	PowerKW     float64 `json:"power_kw"`
	Efficiency  float64 `json:"efficiency"`
}

// Priority orders how strongly a recommendation should shape the decision.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// priorityRank gives CRITICAL the highest rank for comparisons.
var priorityRank = map[Priority]int{
	PriorityCritical: 3,
	PriorityHigh:     2,
	PriorityMedium:   1,
	PriorityLow:      0,
}

// Outranks reports whether p is strictly higher priority than other.
func (p Priority) Outranks(other Priority) bool {
	return priorityRank[p] > priorityRank[other]
}

// Recommendation is the single output of one specialist agent for a tick.
type Recommendation struct {
	AgentName          string                 `json:"agent_name"`
	Priority           Priority               `json:"priority"`
	Confidence         float64                `json:"confidence"`
	RecommendationType string                 `json:"recommendation_type"`
	Reasoning          string                 `json:"reasoning"`
	Data               map[string]interface{} `json:"data"`
	CanVeto            bool                   `json:"can_veto"`
}

// ConstraintViolation records a rule that was, or would have been,
// broken; the validator is expected to leave this list empty.
type ConstraintViolation struct {
	Type  string      `json:"type"`
	Value float64     `json:"value"`
	Limit interface{} `json:"limit"`
}

// CostCalculation is the decision-level energy/cost summary (C7 output).
type CostCalculation struct {
	TotalPowerKW         float64 `json:"total_power_kw"`
	EnergyConsumedKWh    float64 `json:"energy_consumed_kwh"`
	CostEUR              float64 `json:"cost_eur"`
	FlowPumpedM3         float64 `json:"flow_pumped_m3"`
	SpecificEnergyKWhPerM3 float64 `json:"specific_energy_kwh_per_m3"`
}

// AgentMessage is the JSON-surface projection of a Recommendation
// (spec.md §6): narrative fields plus an opaque key_data payload.
type AgentMessage struct {
	AgentName          string                 `json:"agent_name"`
	Priority           Priority               `json:"priority"`
	Confidence         float64                `json:"confidence"`
	RecommendationType string                 `json:"recommendation_type"`
	Reasoning          string                 `json:"reasoning"`
	KeyData            map[string]interface{} `json:"key_data"`
}

// Decision is the tick output: feasible pump commands plus the full
// reasoning trail that produced them.
type Decision struct {
	Timestamp            time.Time             `json:"timestamp"`
	PumpCommands          []PumpCommand         `json:"pump_commands"`
	CoordinatorReasoning string                `json:"coordinator_reasoning"`
	PriorityApplied      Priority              `json:"priority_applied"`
	ConflictsResolved    []string              `json:"conflicts_resolved"`
	Confidence           float64               `json:"confidence"`
	CostCalculation      CostCalculation       `json:"cost_calculation"`
	ConstraintViolations []ConstraintViolation `json:"constraint_violations"`
	AgentMessages        []AgentMessage        `json:"agent_messages"`
}

// ToAgentMessages projects recommendations onto the JSON surface shape.
func ToAgentMessages(recs []Recommendation) []AgentMessage {
	out := make([]AgentMessage, 0, len(recs))
	for _, r := range recs {
		out = append(out, AgentMessage{
			AgentName:          r.AgentName,
			Priority:           r.Priority,
			Confidence:         r.Confidence,
			RecommendationType: r.RecommendationType,
			Reasoning:          r.Reasoning,
			KeyData:            r.Data,
		})
	}
	return out
}
