package agents

import (
	"context"
	"fmt"

	"github.com/aosanya/liftkernel/internal/ai"
	"github.com/aosanya/liftkernel/internal/kernel"
)

// InflowAgent wraps C3's forecast into a Recommendation (spec.md §4.4).
type InflowAgent struct {
	llm ai.LLMClient
}

// NewInflowAgent builds the inflow forecasting specialist.
func NewInflowAgent(llm ai.LLMClient) *InflowAgent {
	return &InflowAgent{llm: llm}
}

func (a *InflowAgent) Name() string { return "inflow_forecasting" }

func (a *InflowAgent) Assess(ctx context.Context, in AssessInput) kernel.Recommendation {
	f := in.Forecast
	priority := kernel.PriorityMedium
	if f.StormDetected || f.PeakValue > 2*in.State.F1M3Per15Min {
		priority = kernel.PriorityHigh
	}

	fallback := fmt.Sprintf(
		"Inflow trend is %s with a forecasted peak of %.0f m3/15min %d steps out; confidence %.2f.",
		f.Trend, f.PeakValue, f.PeakTimeOffset, f.Confidence,
	)
	reasoning := narrate(ctx, a.llm,
		"You are the inflow forecasting specialist for a wastewater lift station. Summarize the forecast in two sentences.",
		fallback, fallback,
	)

	return kernel.Recommendation{
		AgentName:          a.Name(),
		Priority:           priority,
		Confidence:         f.Confidence,
		RecommendationType: "inflow_forecast",
		Reasoning:          reasoning,
		Data: map[string]interface{}{
			"predicted_inflow":      f.PeakValue,
			"forecast_horizon_steps": len(f.Next24h),
			"trend":                 string(f.Trend),
			"storm_detected":        f.StormDetected,
		},
	}
}
