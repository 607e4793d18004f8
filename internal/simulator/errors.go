package simulator

// ============================================================================
// Simulator Error Definitions
// Purpose: Errors raised before any simulation work begins
// ============================================================================

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// ErrInvalidParameter indicates a parameter outside its documented bounds.
// Detailed errors wrap it; match with errors.Is.
var ErrInvalidParameter = errors.New("simulator: invalid parameter")

// checkProbability rejects NaN and values outside [0,1]
func checkProbability(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s=%v must be within [0,1]", ErrInvalidParameter, name, v)
	}
	return nil
}

// validateRates checks every probability and rate carried by params
func validateRates(params types.SimulationParameters) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"incidence", params.Incidence},
		{"case_fatality", params.CaseFatality},
		{"mortality", params.Mortality},
		{"birth_rate", params.BirthRate},
		{"initial_prevalence", params.InitialPrevalence},
	}
	for _, c := range checks {
		if err := checkProbability(c.name, c.value); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a complete parameter set, including its year range.
//
// Returns:
//   - error: wraps ErrInvalidParameter for the first violation found
func Validate(params types.SimulationParameters) error {
	if err := validateRates(params); err != nil {
		return err
	}
	if params.EndYear < params.StartYear {
		return fmt.Errorf("%w: empty year range %d..%d", ErrInvalidParameter, params.StartYear, params.EndYear)
	}
	return nil
}

// ValidatePopulationSize rejects negative population sizes
func ValidatePopulationSize(size int) error {
	if size < 0 {
		return fmt.Errorf("%w: population=%d must not be negative", ErrInvalidParameter, size)
	}
	return nil
}

// ValidateReductionRate checks the policy incidence reduction rate
func ValidateReductionRate(rate float64) error {
	return checkProbability("reduction_rate", rate)
}
