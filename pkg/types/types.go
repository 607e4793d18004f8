// Package types defines the core domain model shared by the policy-impact simulator
package types

import (
	"fmt"
	"time"
)

// HealthState health state of one individual
type HealthState uint8

// Health state constants
const (
	Healthy  HealthState = iota // alive, without the disease
	Diseased                    // alive, carrying the disease
	Dead                        // terminal, removed at the end of the year
)

// String returns the lowercase name of the state
func (s HealthState) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Diseased:
		return "diseased"
	case Dead:
		return "dead"
	default:
		return fmt.Sprintf("HealthState(%d)", uint8(s))
	}
}

// AllStates lists every health state in reporting order
var AllStates = []HealthState{Healthy, Diseased, Dead}

// Population one HealthState per individual. Order carries no meaning.
type Population []HealthState

// NewUniformPopulation returns a population of size individuals all in state
func NewUniformPopulation(size int, state HealthState) Population {
	p := make(Population, size)
	if state != Healthy {
		for i := range p {
			p[i] = state
		}
	}
	return p
}

// Count returns the number of individuals in state
func (p Population) Count(state HealthState) int {
	n := 0
	for _, s := range p {
		if s == state {
			n++
		}
	}
	return n
}

// Clone returns an independent copy, so callers never alias the backing array
func (p Population) Clone() Population {
	if p == nil {
		return nil
	}
	out := make(Population, len(p))
	copy(out, p)
	return out
}

// SimulationParameters immutable configuration of a single scenario run
type SimulationParameters struct {
	Incidence         float64 `json:"incidence" yaml:"incidence"`                   // P(Healthy -> Diseased) per year
	CaseFatality      float64 `json:"case_fatality" yaml:"case_fatality"`           // P(Diseased dies of the disease) per year
	Mortality         float64 `json:"mortality" yaml:"mortality"`                   // P(Diseased dies of other causes) per year
	BirthRate         float64 `json:"birth_rate" yaml:"birth_rate"`                 // births per individual per year
	StartYear         int     `json:"start_year" yaml:"start_year"`                 // first simulated year, inclusive
	EndYear           int     `json:"end_year" yaml:"end_year"`                     // last simulated year, inclusive
	InitialPrevalence float64 `json:"initial_prevalence" yaml:"initial_prevalence"` // fraction Diseased at seeding
}

// Years returns the inclusive year range StartYear..EndYear.
// An inverted range yields an empty slice.
func (p SimulationParameters) Years() []int {
	if p.EndYear < p.StartYear {
		return nil
	}
	years := make([]int, 0, p.EndYear-p.StartYear+1)
	for y := p.StartYear; y <= p.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// WithIncidence returns a copy of the parameters with a different incidence
func (p SimulationParameters) WithIncidence(incidence float64) SimulationParameters {
	p.Incidence = incidence
	return p
}

// YearlyStatistic summary of one simulated year, taken after births and removals
type YearlyStatistic struct {
	Year            int `json:"year"`
	Healthy         int `json:"healthy"`
	Diseased        int `json:"diseased"`
	Deaths          int `json:"deaths"` // individuals removed this year
	Births          int `json:"births"` // individuals added this year
	TotalPopulation int `json:"total_population"`
}

// PrevalenceSeries per-year percentage of each health state, parallel slices
type PrevalenceSeries struct {
	Years    []int     `json:"years"`
	Healthy  []float64 `json:"healthy"`
	Diseased []float64 `json:"diseased"`
	Dead     []float64 `json:"dead"`
}

// ScenarioName identifies one of the compared scenarios
type ScenarioName string

// Scenario constants
const (
	ScenarioBAU    ScenarioName = "bau"    // business as usual, baseline incidence
	ScenarioPolicy ScenarioName = "policy" // incidence reduced by the new policy
)

// Title returns the display name of the scenario
func (n ScenarioName) Title() string {
	switch n {
	case ScenarioBAU:
		return "Business as Usual"
	case ScenarioPolicy:
		return "Policy"
	default:
		return string(n)
	}
}

// ScenarioReport exported outcome of one scenario
type ScenarioReport struct {
	Name       ScenarioName      `json:"name"`
	Incidence  float64           `json:"incidence"`
	Stats      []YearlyStatistic `json:"stats"`
	Prevalence PrevalenceSeries  `json:"prevalence"`
}

// ReportData exported comparison of both scenarios.
// Read-only output, never used to resume a simulation.
type ReportData struct {
	Parameters     SimulationParameters `json:"parameters"`
	PopulationSize int                  `json:"population_size"`
	ReductionRate  float64              `json:"reduction_rate"`
	Seed           uint64               `json:"seed"`
	Scenarios      []ScenarioReport     `json:"scenarios"`
	GeneratedAt    time.Time            `json:"generated_at"`
	SchemaVer      int                  `json:"schema_ver"` // bumped on incompatible layout changes
	Checksum       uint32               `json:"checksum"`   // CRC32 of the report with Checksum zeroed
}
