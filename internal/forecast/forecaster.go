// Package forecast implements C3: inference over a pre-trained inflow
// model. Training is out of scope; this package only runs the model
// forward from a window of historical samples.
package forecast

import "iter"

// Trend summarizes the forecasted inflow trajectory's direction.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendFalling Trend = "falling"
)

const (
	stepsPer6h  = 24 // 15-min cadence
	stepsPer24h = 96
)

// Snapshot is the ForecastSnapshot the six specialists share for one tick.
type Snapshot struct {
	Next6h          []float64
	Next24h         []float64
	PeakValue       float64
	PeakTimeOffset  int // steps into Next24h
	Trend           Trend
	StormDetected   bool
	Confidence      float64
}

// Forecaster runs the loaded model forward. It is single-threaded and
// read-only after construction: the decision driver serializes ticks,
// so concurrent calls never happen in practice, but Forecast itself
// does not mutate the Forecaster.
type Forecaster struct {
	model *ModelParams
}

// New builds a Forecaster around a loaded model.
func New(model *ModelParams) *Forecaster {
	return &Forecaster{model: model}
}

// Forecast implements forecast(history_index) → ForecastSnapshot. It is
// not restartable: each call re-runs the model from scratch over the
// supplied history window; there is no way to resume a prior call.
//
// history is the set of inflow samples available up to and including
// historyIndex, oldest first. If historyIndex is below the model's
// window size, or history is empty, Forecast returns the degraded
// cold-start forecast (spec.md §4.3) instead of failing. A non-empty
// history shorter than the window past that index is used as-is, with
// confidence scaled down by its length.
func (f *Forecaster) Forecast(historyIndex int, history []float64) Snapshot {
	if historyIndex < f.model.WindowSize || len(history) == 0 {
		return f.degraded(history)
	}

	window := history
	if len(window) > f.model.WindowSize {
		window = window[len(window)-f.model.WindowSize:]
	}

	level := exponentialLevel(window, f.model.SmoothingAlpha)
	slope := trendSlope(window)

	next24 := make([]float64, 0, stepsPer24h)
	for v := range f.sequence(level, slope, historyIndex, stepsPer24h) {
		next24 = append(next24, v)
	}
	next6 := append([]float64(nil), next24[:stepsPer6h]...)

	peakValue, peakOffset := 0.0, 0
	for i, v := range next24 {
		if v > peakValue {
			peakValue = v
			peakOffset = i
		}
	}

	trend := classifyTrend(next24)
	storm := level > 0 && peakValue > f.model.StormMultiplier*level

	return Snapshot{
		Next6h:         next6,
		Next24h:        next24,
		PeakValue:      peakValue,
		PeakTimeOffset: peakOffset,
		Trend:          trend,
		StormDetected:  storm,
		Confidence:     confidenceFor(len(window), f.model.WindowSize),
	}
}

// sequence is the lazy, finite generator the forecast walks forward:
// a seasonally-shaped, trend-extrapolated projection from the smoothed
// level. Each invocation produces a fresh sequence; nothing here is
// cached or resumable across calls.
func (f *Forecaster) sequence(level, slope float64, historyIndex, steps int) iter.Seq[float64] {
	profile := f.model.SeasonalProfile
	return func(yield func(float64) bool) {
		for i := 0; i < steps; i++ {
			bucket := (historyIndex + i) % len(profile)
			v := (level + slope*float64(i)) * profile[bucket]
			if v < 0 {
				v = 0
			}
			if !yield(v) {
				return
			}
		}
	}
}

// degraded implements the cold-start fallback: the last observed value
// copied flat across the horizon, confidence 0.2, no storm flag.
func (f *Forecaster) degraded(history []float64) Snapshot {
	last := 0.0
	if len(history) > 0 {
		last = history[len(history)-1]
	}
	next24 := make([]float64, stepsPer24h)
	for i := range next24 {
		next24[i] = last
	}
	return Snapshot{
		Next6h:         append([]float64(nil), next24[:stepsPer6h]...),
		Next24h:        next24,
		PeakValue:      last,
		PeakTimeOffset: 0,
		Trend:          TrendStable,
		StormDetected:  false,
		Confidence:     0.2,
	}
}

func exponentialLevel(window []float64, alpha float64) float64 {
	level := window[0]
	for _, v := range window[1:] {
		level = alpha*v + (1-alpha)*level
	}
	return level
}

// trendSlope is a simple endpoints-based slope over the window, used
// only to extrapolate direction, not as a precision estimator.
func trendSlope(window []float64) float64 {
	n := len(window)
	if n < 2 {
		return 0
	}
	quarter := n / 4
	if quarter == 0 {
		quarter = 1
	}
	early := average(window[:quarter])
	late := average(window[n-quarter:])
	return (late - early) / float64(n)
}

func average(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func classifyTrend(series []float64) Trend {
	if len(series) < 2 {
		return TrendStable
	}
	quarter := len(series) / 4
	if quarter == 0 {
		quarter = 1
	}
	early := average(series[:quarter])
	late := average(series[len(series)-quarter:])
	if early == 0 {
		if late > 0 {
			return TrendRising
		}
		return TrendStable
	}
	delta := (late - early) / early
	switch {
	case delta > 0.05:
		return TrendRising
	case delta < -0.05:
		return TrendFalling
	default:
		return TrendStable
	}
}

func confidenceFor(windowLen, wantWindow int) float64 {
	if wantWindow <= 0 {
		return 0.5
	}
	ratio := float64(windowLen) / float64(wantWindow)
	if ratio > 1 {
		ratio = 1
	}
	return 0.5 + 0.45*ratio
}
