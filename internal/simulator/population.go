package simulator

import (
	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// NewPopulation seeds a population of size individuals. Each one is
// independently Diseased with probability prevalence, otherwise Healthy.
//
// Returns:
//   - types.Population: the seeded population
//   - error: ErrInvalidParameter for a negative size or a prevalence outside [0,1]
func (s *Simulator) NewPopulation(size int, prevalence float64) (types.Population, error) {
	if err := ValidatePopulationSize(size); err != nil {
		return nil, err
	}
	if err := checkProbability("initial_prevalence", prevalence); err != nil {
		return nil, err
	}

	pop := make(types.Population, size)
	for i := range pop {
		if s.bernoulli(prevalence) {
			pop[i] = types.Diseased
		}
	}
	return pop, nil
}
