package pumpmodel

import "github.com/aosanya/liftkernel/internal/kernel"

// L2M is the fixed WWTP intake elevation pumps lift water to.
const L2M = 30.0

// defaultSpecs is the embedded pump table: P1-P4 are the large class,
// P5-P8 the small class (Open Question resolved in SPEC_FULL.md §3).
// Curve points give efficiency at a fraction of rated flow, sampled at
// 50 Hz; the model scales the operating point by affinity law before
// interpolating.
func defaultSpecs() map[string]kernel.PumpSpec {
	largeCurve := []kernel.CurvePoint{
		{FlowM3H: 0, Efficiency: 0},
		{FlowM3H: 1050, Efficiency: 0.62},
		{FlowM3H: 2100, Efficiency: 0.78},
		{FlowM3H: 3150, Efficiency: 0.84},
		{FlowM3H: 4200, Efficiency: 0.81},
		{FlowM3H: 4620, Efficiency: 0.74},
	}
	smallCurve := []kernel.CurvePoint{
		{FlowM3H: 0, Efficiency: 0},
		{FlowM3H: 400, Efficiency: 0.58},
		{FlowM3H: 800, Efficiency: 0.74},
		{FlowM3H: 1200, Efficiency: 0.80},
		{FlowM3H: 1600, Efficiency: 0.77},
		{FlowM3H: 1760, Efficiency: 0.70},
	}

	specs := make(map[string]kernel.PumpSpec, 8)
	for i := 1; i <= 4; i++ {
		id := pumpID(i)
		specs[id] = kernel.PumpSpec{
			PumpID:             id,
			Class:              kernel.PumpClassLarge,
			RatedPowerKW:       220,
			RatedFlowM3H:       4200,
			OptimalFrequencyHz: 48.5,
			RatedHeadM:         28.0,
			Curve:              largeCurve,
		}
	}
	for i := 5; i <= 8; i++ {
		id := pumpID(i)
		specs[id] = kernel.PumpSpec{
			PumpID:             id,
			Class:              kernel.PumpClassSmall,
			RatedPowerKW:       90,
			RatedFlowM3H:       1600,
			OptimalFrequencyHz: 48.5,
			RatedHeadM:         28.0,
			Curve:              smallCurve,
		}
	}
	return specs
}

func pumpID(n int) string {
	const letters = "12345678"
	return "P" + string(letters[n-1])
}
