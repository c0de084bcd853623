// Package constraints holds the static, process-wide hydraulic and
// operational bounds that every decision must satisfy (C2). The set is
// immutable: no constructor, no mutation, just package-level values and
// pure helper functions.
package constraints

import "time"

const (
	// L1Min is the lowest physically meaningful tunnel level.
	L1Min = 0.0
	// L1Alarm is the level at which Safety should already be concerned.
	L1Alarm = 7.2
	// L1Max is the absolute ceiling for the tunnel level.
	L1Max = 8.0
	// L1EmptyTarget is the level the daily-emptying rule must cross under.
	L1EmptyTarget = 0.5

	// F2Max is the maximum combined outflow, m3/h.
	F2Max = 16000.0

	// FreqMin and FreqMax bound the committed frequency band, Hz.
	FreqMin = 47.8
	FreqMax = 50.0

	// MinRunningHold is how long a pump that just started must stay
	// running before this decision may stop it again.
	MinRunningHold = 2 * time.Hour

	// DryWeatherInflowThreshold is the F1 below which the daily
	// emptying rule is in effect, m3/15min.
	DryWeatherInflowThreshold = 1000.0

	// EmptyingWindow is the rolling window the daily-emptying rule is
	// evaluated over (Open Question resolved in SPEC_FULL.md §3: rolling,
	// not calendar day).
	EmptyingWindow = 24 * time.Hour

	// FreqStepHz is the step size C6 uses when reducing frequency to
	// satisfy the F2 cap (Open Question resolved: 0.5 Hz default).
	FreqStepHz = 0.5
)

// InFrequencyBand reports whether f is a valid committed running
// frequency (the ramp exception never appears in a committed command).
func InFrequencyBand(f float64) bool {
	return f >= FreqMin && f <= FreqMax
}

// IsDryWeather reports whether current inflow qualifies as dry weather
// for the daily-emptying rule.
func IsDryWeather(f1M3Per15Min float64) bool {
	return f1M3Per15Min < DryWeatherInflowThreshold
}
