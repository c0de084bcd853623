// Package metrics implements C7: the post-decision cost/energy/flow
// aggregation and the final constraint re-check.
package metrics

import (
	"math"

	"github.com/aosanya/liftkernel/internal/constraints"
	"github.com/aosanya/liftkernel/internal/kernel"
)

const tickHours = 0.25

// Calculate implements spec.md §4.7 over the final, validated commands.
func Calculate(commands []kernel.PumpCommand, priceEURPerKWh float64) kernel.CostCalculation {
	totalPowerKW := 0.0
	totalFlowM3H := 0.0
	for _, c := range commands {
		if !c.Start {
			continue
		}
		totalPowerKW += c.PowerKW
		totalFlowM3H += c.FlowM3H
	}

	energyKWh := totalPowerKW * tickHours
	costEUR := energyKWh * priceEURPerKWh
	flowPumpedM3 := totalFlowM3H * tickHours

	specificEnergy := 0.0
	if flowPumpedM3 != 0 {
		specificEnergy = energyKWh / flowPumpedM3
	}

	return kernel.CostCalculation{
		TotalPowerKW:           totalPowerKW,
		EnergyConsumedKWh:      energyKWh,
		CostEUR:                costEUR,
		FlowPumpedM3:           flowPumpedM3,
		SpecificEnergyKWhPerM3: specificEnergy,
	}
}

// CheckViolations re-checks every C2 rule against the final commands
// and state; it should always return empty if the validator is correct.
func CheckViolations(commands []kernel.PumpCommand, state kernel.SystemState) []kernel.ConstraintViolation {
	var violations []kernel.ConstraintViolation

	if state.L1M < constraints.L1Min || state.L1M > constraints.L1Max {
		violations = append(violations, kernel.ConstraintViolation{
			Type: "L1_OUT_OF_RANGE", Value: state.L1M,
			Limit: []float64{constraints.L1Min, constraints.L1Max},
		})
	}

	totalFlow := 0.0
	anyRunning := false
	for _, c := range commands {
		if c.Start != (c.FrequencyHz > 0) {
			violations = append(violations, kernel.ConstraintViolation{
				Type: "START_FREQUENCY_MISMATCH", Value: c.FrequencyHz, Limit: c.PumpID,
			})
		}
		if c.Start {
			anyRunning = true
			totalFlow += c.FlowM3H
			if c.FrequencyHz < constraints.FreqMin || c.FrequencyHz > constraints.FreqMax || math.IsNaN(c.FrequencyHz) {
				violations = append(violations, kernel.ConstraintViolation{
					Type: "FREQ_OUT_OF_BAND", Value: c.FrequencyHz,
					Limit: []float64{constraints.FreqMin, constraints.FreqMax},
				})
			}
		}
	}

	if !anyRunning {
		violations = append(violations, kernel.ConstraintViolation{
			Type: "NO_PUMP_RUNNING", Value: 0, Limit: "min 1",
		})
	}
	if totalFlow > constraints.F2Max {
		violations = append(violations, kernel.ConstraintViolation{
			Type: "F2_EXCEEDED", Value: totalFlow, Limit: constraints.F2Max,
		})
	}

	return violations
}
