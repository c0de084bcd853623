package agents

import (
	"context"
	"fmt"
	"math"

	"github.com/aosanya/liftkernel/internal/ai"
	"github.com/aosanya/liftkernel/internal/kernel"
)

// nominalTickEnergyKWh approximates one pump-tick's energy use for
// arbitrage-value sizing; the Energy Cost specialist reasons about
// price shape only, not a specific pump plan (spec.md §4.4 keeps
// agents independent of each other's outputs).
const nominalTickEnergyKWh = 55.0

// CostAgent analyzes the rolling price window for arbitrage opportunity.
type CostAgent struct {
	llm ai.LLMClient
}

// NewCostAgent builds the energy cost specialist.
func NewCostAgent(llm ai.LLMClient) *CostAgent {
	return &CostAgent{llm: llm}
}

func (a *CostAgent) Name() string { return "energy_cost" }

func (a *CostAgent) Assess(ctx context.Context, in AssessInput) kernel.Recommendation {
	current := in.State.ElectricityPriceEURPerKWh
	window := in.PriceWindow24h

	minPrice, maxPrice := current, current
	minOffset, maxOffset := 0, 0
	for i, p := range window {
		if p < minPrice {
			minPrice, minOffset = p, i
		}
		if p > maxPrice {
			maxPrice, maxOffset = p, i
		}
	}

	ratio := ratioOrLarge(maxPrice, minPrice)

	priority := kernel.PriorityMedium
	if ratio > 10 {
		priority = kernel.PriorityHigh
	}

	arbitrage := (current - minPrice) * nominalTickEnergyKWh
	if arbitrage < 0 {
		arbitrage = 0
	}

	recType := "PUMP_NORMALLY"
	switch {
	case current <= minPrice+1e-9:
		recType = "PUMP_NOW"
	case current >= maxPrice-1e-9 && arbitrage > 0:
		recType = "DEFER"
	}

	fallback := fmt.Sprintf(
		"Current price %.3f EUR/kWh against a 24h range of [%.3f, %.3f]; recommending %s (arbitrage value %.2f EUR).",
		current, minPrice, maxPrice, recType, arbitrage,
	)
	reasoning := narrate(ctx, a.llm,
		"You are the energy cost specialist for a wastewater lift station. Explain the price arbitrage opportunity in two sentences.",
		fallback, fallback,
	)

	return kernel.Recommendation{
		AgentName:          a.Name(),
		Priority:           priority,
		Confidence:         0.8,
		RecommendationType: "cost_optimization",
		Reasoning:          reasoning,
		Data: map[string]interface{}{
			"current_price":          current,
			"next_cheap_window":      float64(minOffset) * 0.25,
			"next_expensive_window":  float64(maxOffset) * 0.25,
			"arbitrage_value_eur":    arbitrage,
			"recommendation":         recType,
		},
	}
}

func ratioOrLarge(maxPrice, minPrice float64) float64 {
	if minPrice <= 0 {
		if maxPrice <= 0 {
			return 1
		}
		return math.Inf(1)
	}
	return maxPrice / minPrice
}
