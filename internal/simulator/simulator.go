// ============================================================================
// Policy Impact Simulator - Population State Transition Engine
// ============================================================================
//
// Package: internal/simulator
// File: simulator.go
// Purpose: Advance every individual of a population through health states,
//          one discrete year at a time, and aggregate yearly statistics
//
// Yearly Step (strict order):
//   1. Working copy of the population; transitions read the pre-update state
//   2. Per individual:
//        Healthy  -> Diseased   if draw < incidence
//        Diseased -> Dead       if draw < case fatality
//                 else -> Dead  if a second, fresh draw < mortality
//        Dead     -> Dead       (never re-evaluated)
//   3. Births: floor(len(working) * birth rate) new Healthy individuals
//   4. Removal: every Dead individual is dropped and counted as a death
//   5. Statistics are taken from the post-removal population, which is also
//      the snapshot for the year and the input of the next year
//
// Draw Order:
//   incidence -> case fatality -> mortality, one fresh draw per test.
//   The mortality draw only happens when case fatality did not fire, so the
//   yearly death risk of a Diseased individual is
//   pcf + (1 - pcf) * pm, produced by two sequential draws.
//
// Randomness:
//   Each Simulator owns a *rand.Rand (PCG). The same seed replays the same
//   trajectory. A Simulator is NOT safe for concurrent use; give each
//   scenario its own instance.
//
// ============================================================================

package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// pcgStream second PCG word, keeps streams of neighbouring seeds apart
const pcgStream = 0x9E3779B97F4A7C15

// Simulator advances populations year by year
type Simulator struct {
	rng *rand.Rand // private random source, one per scenario
}

// New creates a Simulator seeded with seed.
// Seed 0 seeds from the clock.
func New(seed uint64) *Simulator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return NewWithRand(rand.New(rand.NewPCG(seed, seed^pcgStream)))
}

// NewWithRand creates a Simulator drawing from rng
func NewWithRand(rng *rand.Rand) *Simulator {
	return &Simulator{rng: rng}
}

// YearResult outcome of a single Step
type YearResult struct {
	Population types.Population // post-removal population
	Births     int              // individuals appended this year
	Deaths     int              // Dead individuals removed this year
}

// Simulate runs the population through every year in order.
//
// Parameters:
//   - years: year numbers to simulate, in order
//   - initial: starting population; never mutated
//   - params: transition probabilities and birth rate for the whole run
//
// Returns:
//   - []types.Population: post-removal snapshot of each year
//   - []types.YearlyStatistic: one record per year, ordered like years
//   - error: ErrInvalidParameter before any work starts
func (s *Simulator) Simulate(years []int, initial types.Population, params types.SimulationParameters) ([]types.Population, []types.YearlyStatistic, error) {
	if len(years) == 0 {
		return nil, nil, fmt.Errorf("%w: empty year range", ErrInvalidParameter)
	}
	if err := validateRates(params); err != nil {
		return nil, nil, err
	}

	snapshots := make([]types.Population, 0, len(years))
	stats := make([]types.YearlyStatistic, 0, len(years))

	current := initial
	for _, year := range years {
		res := s.Step(current, params)

		stats = append(stats, Summarize(year, res))
		snapshots = append(snapshots, res.Population)
		current = res.Population
	}

	return snapshots, stats, nil
}

// Step advances current by one year. current is left untouched.
func (s *Simulator) Step(current types.Population, params types.SimulationParameters) YearResult {
	next := current.Clone()
	if next == nil {
		next = types.Population{}
	}

	for i, state := range current {
		switch state {
		case types.Healthy:
			if s.bernoulli(params.Incidence) {
				next[i] = types.Diseased
			}
		case types.Diseased:
			if s.bernoulli(params.CaseFatality) {
				next[i] = types.Dead
			} else if s.bernoulli(params.Mortality) {
				next[i] = types.Dead
			}
		case types.Dead:
			// terminal
		}
	}

	births := BirthCount(len(next), params.BirthRate)
	for i := 0; i < births; i++ {
		next = append(next, types.Healthy)
	}

	next, deaths := RemoveDead(next)

	return YearResult{
		Population: next,
		Births:     births,
		Deaths:     deaths,
	}
}

// bernoulli returns true with probability p. Float64 is in [0,1), so p=1
// always fires and p=0 never does.
func (s *Simulator) bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

// BirthCount returns floor(size * rate)
func BirthCount(size int, rate float64) int {
	return int(math.Floor(float64(size) * rate))
}

// RemoveDead drops every Dead individual from pop in place and reports how
// many were dropped. The returned slice shares pop's backing array.
func RemoveDead(pop types.Population) (types.Population, int) {
	alive := pop[:0]
	for _, state := range pop {
		if state != types.Dead {
			alive = append(alive, state)
		}
	}
	return alive, len(pop) - len(alive)
}

// Summarize builds the YearlyStatistic of one Step
func Summarize(year int, res YearResult) types.YearlyStatistic {
	return types.YearlyStatistic{
		Year:            year,
		Healthy:         res.Population.Count(types.Healthy),
		Diseased:        res.Population.Count(types.Diseased),
		Deaths:          res.Deaths,
		Births:          res.Births,
		TotalPopulation: len(res.Population),
	}
}
