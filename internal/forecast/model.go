package forecast

import (
	"encoding/json"
	"fmt"
	"os"
)

// ModelParams are the inference-time coefficients of the pre-trained
// inflow model. Training produced these; only inference happens here.
type ModelParams struct {
	// WindowSize is the minimum number of trailing history samples the
	// model needs before it can produce a non-degraded forecast.
	WindowSize int `json:"window_size"`
	// SmoothingAlpha weights the exponential-smoothing level update.
	SmoothingAlpha float64 `json:"smoothing_alpha"`
	// SeasonalProfile is a 96-bucket (15-min cadence, 24h) multiplier
	// applied to the smoothed level to recover daily shape.
	SeasonalProfile [96]float64 `json:"seasonal_profile"`
	// StormMultiplier is how far above baseline a peak must be to flag storm_detected.
	StormMultiplier float64 `json:"storm_multiplier"`
}

// LoadModel reads the model artifact from disk. The file is read-only
// after load; this is the only I/O the forecaster performs.
func LoadModel(path string) (*ModelParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forecast: read model artifact: %w", err)
	}
	var p ModelParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("forecast: parse model artifact: %w", err)
	}
	if p.WindowSize <= 0 {
		p.WindowSize = 96
	}
	if p.SmoothingAlpha <= 0 || p.SmoothingAlpha > 1 {
		p.SmoothingAlpha = 0.3
	}
	if p.StormMultiplier <= 0 {
		p.StormMultiplier = 2.0
	}
	hasProfile := false
	for _, v := range p.SeasonalProfile {
		if v != 0 {
			hasProfile = true
			break
		}
	}
	if !hasProfile {
		for i := range p.SeasonalProfile {
			p.SeasonalProfile[i] = 1.0
		}
	}
	return &p, nil
}

// DefaultModel returns in-process defaults for environments with no
// artifact path configured (tests, cold-start demos).
func DefaultModel() *ModelParams {
	p := &ModelParams{
		WindowSize:     96,
		SmoothingAlpha: 0.3,
		StormMultiplier: 2.0,
	}
	for i := range p.SeasonalProfile {
		p.SeasonalProfile[i] = 1.0
	}
	return p
}
