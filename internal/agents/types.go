// Package agents implements C4: the six specialist agents that each
// assess the current tick independently and emit exactly one
// Recommendation. Agents never observe each other's output (spec.md
// §4.4); all cross-cutting context arrives via AssessInput.
package agents

import (
	"context"

	"github.com/aosanya/liftkernel/internal/forecast"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/runtime"
)

// AssessInput is everything a specialist may read. It is built once
// per tick and shared read-only across all six concurrent assessments.
type AssessInput struct {
	State       kernel.SystemState
	Forecast    forecast.Snapshot
	Specs       map[string]kernel.PumpSpec
	Runtime     runtime.Snapshot
	// PriceWindow24h holds the trailing 24h of electricity prices
	// (96 samples at 15-min cadence), most recent last, for the Energy
	// Cost specialist's arbitrage analysis.
	PriceWindow24h []float64
	// PreviousF2M3H is the prior tick's committed total outflow, for
	// the Flow Smoothness specialist's step-change check.
	PreviousF2M3H float64
}

// Specialist is the single capability every agent implements (Design
// Notes §9: "polymorphic over a single capability").
type Specialist interface {
	Name() string
	Assess(ctx context.Context, in AssessInput) kernel.Recommendation
}

// TimeoutStub is the neutral recommendation substituted when an agent
// exceeds its per-tick deadline (spec.md §4.4).
func TimeoutStub(name string) kernel.Recommendation {
	return kernel.Recommendation{
		AgentName:  name,
		Priority:   kernel.PriorityLow,
		Confidence: 0.0,
		Reasoning:  "timeout",
		Data:       map[string]interface{}{},
	}
}
