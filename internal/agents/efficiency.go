package agents

import (
	"context"
	"fmt"
	"sort"

	"github.com/aosanya/liftkernel/internal/ai"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
)

// candidateFrequencies are the discrete frequencies the efficiency
// specialist searches over (spec.md §4.4).
var candidateFrequencies = []float64{47.8, 48.0, 48.5, 49.0, 49.5, 50.0}

// EfficiencyAgent searches pump/frequency combinations for the best
// efficiency-weighted match to the required flow.
type EfficiencyAgent struct {
	model *pumpmodel.Model
	llm   ai.LLMClient
}

// NewEfficiencyAgent builds the pump efficiency specialist.
func NewEfficiencyAgent(model *pumpmodel.Model, llm ai.LLMClient) *EfficiencyAgent {
	return &EfficiencyAgent{model: model, llm: llm}
}

func (a *EfficiencyAgent) Name() string { return "pump_efficiency" }

type candidateOption struct {
	pumps         []string
	frequency     float64
	flows         map[string]float64
	avgEfficiency float64
	totalFlow     float64
	mismatch      float64
}

func (a *EfficiencyAgent) Assess(ctx context.Context, in AssessInput) kernel.Recommendation {
	required := requiredFlowM3H(in, a.model)
	best := searchBestCombination(in, a.model, required)

	frequencies := make(map[string]float64, len(best.pumps))
	for _, id := range best.pumps {
		frequencies[id] = best.frequency
	}

	specificEnergy := 0.0
	if best.totalFlow > 0 {
		totalPower := 0.0
		for _, id := range best.pumps {
			res, err := a.model.Performance(id, best.frequency, in.State.L1M)
			if err == nil {
				totalPower += res.PowerKW
			}
		}
		specificEnergy = (totalPower * 0.25) / (best.totalFlow * 0.25)
	}

	fallback := fmt.Sprintf(
		"Best match for a required flow of %.0f m3/h is %d pump(s) at %.1f Hz, average efficiency %.2f.",
		required, len(best.pumps), best.frequency, best.avgEfficiency,
	)
	reasoning := narrate(ctx, a.llm,
		"You are the pump efficiency specialist for a wastewater lift station. Explain the recommended pump combination in two sentences.",
		fallback, fallback,
	)

	return kernel.Recommendation{
		AgentName:          a.Name(),
		Priority:           kernel.PriorityMedium,
		Confidence:         0.75,
		RecommendationType: "pump_efficiency",
		Reasoning:          reasoning,
		Data: map[string]interface{}{
			"recommended_pumps": best.pumps,
			"frequencies":       frequencies,
			"specific_energy":   specificEnergy,
			"efficiency":        best.avgEfficiency,
		},
	}
}

// searchBestCombination scans the candidate frequency ladder for the
// pump subset/frequency pair that best matches required, by
// betterOption's scoring. Shared by EfficiencyAgent and SmoothnessAgent
// (spec.md §4.4) so both specialists pick pumps the same way.
func searchBestCombination(in AssessInput, model *pumpmodel.Model, required float64) candidateOption {
	var best candidateOption
	haveBest := false
	for _, freq := range candidateFrequencies {
		option := bestSubsetAt(in, model, freq, required)
		if !haveBest || betterOption(option, best) {
			best = option
			haveBest = true
		}
	}
	return best
}

// bestSubsetAt greedily fills pumps in descending efficiency order at
// the given frequency until the required flow is met.
func bestSubsetAt(in AssessInput, model *pumpmodel.Model, freq, required float64) candidateOption {
	type perf struct {
		id   string
		flow float64
		eff  float64
	}
	perfs := make([]perf, 0, len(in.Specs))
	for id := range in.Specs {
		res, err := model.Performance(id, freq, in.State.L1M)
		if err != nil {
			continue
		}
		perfs = append(perfs, perf{id: id, flow: res.FlowM3H, eff: res.Efficiency})
	}
	sort.Slice(perfs, func(i, j int) bool {
		if perfs[i].eff != perfs[j].eff {
			return perfs[i].eff > perfs[j].eff
		}
		return perfs[i].id < perfs[j].id
	})

	flows := map[string]float64{}
	var pumps []string
	var total, effSum float64
	for _, p := range perfs {
		if total >= required && len(pumps) >= 1 {
			break
		}
		pumps = append(pumps, p.id)
		flows[p.id] = p.flow
		total += p.flow
		effSum += p.eff
	}
	avgEff := 0.0
	if len(pumps) > 0 {
		avgEff = effSum / float64(len(pumps))
	}
	mismatch := 0.0
	if required > 0 {
		mismatch = absFloat(total-required) / required
	}

	return candidateOption{
		pumps:         pumps,
		frequency:     freq,
		flows:         flows,
		avgEfficiency: avgEff,
		totalFlow:     total,
		mismatch:      mismatch,
	}
}

// betterOption scores by weighted(efficiency, flow-match), with ties
// broken by higher average efficiency then fewer running pumps
// (spec.md §4.4).
func betterOption(candidate, current candidateOption) bool {
	candidateScore := candidate.avgEfficiency*0.7 + (1-clamp01(candidate.mismatch))*0.3
	currentScore := current.avgEfficiency*0.7 + (1-clamp01(current.mismatch))*0.3

	if candidateScore != currentScore {
		return candidateScore > currentScore
	}
	if candidate.avgEfficiency != current.avgEfficiency {
		return candidate.avgEfficiency > current.avgEfficiency
	}
	return len(candidate.pumps) < len(current.pumps)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// requiredFlowM3H implements "required ≈ max(F1 projected next 15 min,
// minimum-one-pump flow)" (spec.md §4.4).
func requiredFlowM3H(in AssessInput, model *pumpmodel.Model) float64 {
	projectedM3H := in.State.F1M3Per15Min * 4
	if len(in.Forecast.Next6h) > 0 {
		projectedM3H = in.Forecast.Next6h[0] * 4
	}

	minOnePump := minOnePumpFlowM3H(in, model)
	if projectedM3H > minOnePump {
		return projectedM3H
	}
	return minOnePump
}

// minOnePumpFlowM3H is the flow delivered by the single most efficient
// pump at the minimum running frequency, used as the flow floor the
// min-one-pump invariant imposes.
func minOnePumpFlowM3H(in AssessInput, model *pumpmodel.Model) float64 {
	bestEff, bestFlow := -1.0, 0.0
	for id := range in.Specs {
		res, err := model.Performance(id, 47.8, in.State.L1M)
		if err != nil {
			continue
		}
		if res.Efficiency > bestEff {
			bestEff, bestFlow = res.Efficiency, res.FlowM3H
		}
	}
	return bestFlow
}
