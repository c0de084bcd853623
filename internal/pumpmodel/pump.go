// Package pumpmodel implements C1: the pump-physics model mapping
// (pump id, frequency, tunnel level) to (flow, power, efficiency) via
// the standard centrifugal-pump affinity laws, backed by a per-pump
// efficiency curve.
package pumpmodel

import (
	"math"

	"github.com/aosanya/liftkernel/internal/kernel"
)

const (
	waterDensityKgM3 = 1000.0
	gravityMS2       = 9.81
	fallbackEfficiency = 0.80
)

// Result is one performance evaluation of a pump at an operating point.
type Result struct {
	FlowM3H     float64
	PowerKW     float64
	Efficiency  float64
	// Clamped reports that L1 was outside [0,8] and was clamped to the
	// boundary rather than extrapolated.
	Clamped bool
	// Approximate reports that no curve data was available and the
	// fixed-efficiency affinity fallback was used.
	Approximate bool
}

// Model evaluates pump performance. It is read-only after construction
// and safe for concurrent use by multiple specialist agents.
type Model struct {
	specs map[string]kernel.PumpSpec
}

// New builds a Model from the given specs, keyed by PumpID.
func New(specs map[string]kernel.PumpSpec) *Model {
	return &Model{specs: specs}
}

// NewDefault builds a Model from the embedded eight-pump table.
func NewDefault() *Model {
	return New(defaultSpecs())
}

// Specs returns the pump specs this model was built with, for callers
// that need to enumerate pumps (e.g. the efficiency specialist).
func (m *Model) Specs() map[string]kernel.PumpSpec {
	return m.specs
}

// Performance implements the C1 contract:
// performance(pump_id, frequency_hz, L1_m) → (flow_m3h, power_kw, efficiency).
func (m *Model) Performance(pumpID string, frequencyHz, l1M float64) (Result, error) {
	spec, ok := m.specs[pumpID]
	if !ok {
		return Result{}, kernel.ErrUnknownPump
	}

	if frequencyHz != 0 && (frequencyHz < 47.8 || frequencyHz > 50) {
		return Result{}, kernel.ErrFrequencyOutOfBand
	}

	clamped := false
	l1 := l1M
	if l1 < 0 {
		l1 = 0
		clamped = true
	} else if l1 > 8 {
		l1 = 8
		clamped = true
	}

	if frequencyHz == 0 {
		return Result{FlowM3H: 0, PowerKW: 0, Efficiency: 0, Clamped: clamped}, nil
	}

	ratio := frequencyHz / 50.0
	flow := spec.RatedFlowM3H * ratio
	power := spec.RatedPowerKW * math.Pow(ratio, 3)

	efficiency, approximate := m.efficiencyAt(spec, flow)

	return Result{
		FlowM3H:     flow,
		PowerKW:     power,
		Efficiency:  efficiency,
		Clamped:     clamped,
		Approximate: approximate,
	}, nil
}

// efficiencyAt interpolates the pump's curve at the given flow, falling
// back to a fixed efficiency when no curve data exists.
func (m *Model) efficiencyAt(spec kernel.PumpSpec, flowM3H float64) (float64, bool) {
	if len(spec.Curve) == 0 {
		return fallbackEfficiency, true
	}
	return interpolateEfficiency(spec.Curve, flowM3H), false
}

// interpolateEfficiency does piecewise-linear interpolation over a
// curve sorted by ascending flow, clamping at the table's edges.
func interpolateEfficiency(curve []kernel.CurvePoint, flow float64) float64 {
	if flow <= curve[0].FlowM3H {
		return curve[0].Efficiency
	}
	last := curve[len(curve)-1]
	if flow >= last.FlowM3H {
		return last.Efficiency
	}
	for i := 1; i < len(curve); i++ {
		a, b := curve[i-1], curve[i]
		if flow >= a.FlowM3H && flow <= b.FlowM3H {
			span := b.FlowM3H - a.FlowM3H
			if span == 0 {
				return a.Efficiency
			}
			t := (flow - a.FlowM3H) / span
			return a.Efficiency + t*(b.Efficiency-a.Efficiency)
		}
	}
	return last.Efficiency
}

// HydraulicPowerKW is the canonical P = ρgQH/η relation. Q is in m3/h,
// H in meters. Performance does not call it: power comes from the
// affinity law alone and efficiency from the curve, with no
// cross-check against this relation.
func HydraulicPowerKW(flowM3H, headM, efficiency float64) float64 {
	if efficiency <= 0 {
		return 0
	}
	qM3S := flowM3H / 3600.0
	hydraulicW := waterDensityKgM3 * gravityMS2 * qM3S * headM / efficiency
	return hydraulicW / 1000.0
}

// HeadM returns the head a pump must overcome at the given tunnel level.
func HeadM(l1M float64) float64 {
	return L2M - l1M
}
