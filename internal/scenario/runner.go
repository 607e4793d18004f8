// ============================================================================
// Policy Impact Scenario Runner - Baseline vs Policy Coordinator
// ============================================================================
//
// Package: internal/scenario
// File: runner.go
// Purpose: Build one initial population and run it through the two compared
//          scenarios, Business as Usual and Policy
//
// Run Flow:
//   1. Validate every parameter eagerly (nothing runs on bad input)
//   2. Seed the shared initial population from the configured prevalence
//   3. Derive the policy incidence: incidence * (1 - reduction rate)
//   4. Run each scenario on its own copy of the initial population with its
//      own Simulator (own random stream)
//   5. Compute prevalence series and report per-year statistics to the
//      optional Recorder
//
// Seeds:
//   Config.Seed feeds three derived streams (population, bau, policy). The
//   same seed gives the same comparison whether scenarios run sequentially
//   or in parallel. Seed 0 picks one from the clock; the picked seed is kept
//   in the Comparison so the run can be replayed.
//
// Concurrency:
//   With Parallel set the two scenarios run on a worker.Pool of Workers
//   goroutines (default one per scenario). They share nothing mutable:
//   each owns its Population copy and its Simulator.
//
// ============================================================================

package scenario

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ChuLiYu/policy-impact/internal/prevalence"
	"github.com/ChuLiYu/policy-impact/internal/simulator"
	"github.com/ChuLiYu/policy-impact/internal/worker"
	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// seed streams
const (
	streamPopulation uint64 = iota
	streamBAU
	streamPolicy
)

// Config scenario comparison configuration
type Config struct {
	Parameters     types.SimulationParameters // baseline parameters, shared by both scenarios
	PopulationSize int                        // individuals in the initial population
	ReductionRate  float64                    // fraction of incidence removed by the policy
	Seed           uint64                     // 0 = pick from the clock
	Parallel       bool                       // run both scenarios concurrently
	Workers        int                        // pool size when Parallel; 0 = one per scenario
}

// Validate checks the configuration before any simulation work
func (c Config) Validate() error {
	if err := simulator.Validate(c.Parameters); err != nil {
		return err
	}
	if err := simulator.ValidatePopulationSize(c.PopulationSize); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", simulator.ErrInvalidParameter, c.Workers)
	}
	return simulator.ValidateReductionRate(c.ReductionRate)
}

// Recorder receives progress of scenario runs; metrics.Collector implements it
type Recorder interface {
	RecordYear(scenario types.ScenarioName, stat types.YearlyStatistic)
	ObserveRun(scenario types.ScenarioName, seconds float64)
}

// Outcome result of one scenario
type Outcome struct {
	Name       types.ScenarioName
	Parameters types.SimulationParameters // parameters actually simulated
	Snapshots  []types.Population         // post-removal population of each year
	Stats      []types.YearlyStatistic
	Prevalence types.PrevalenceSeries
	Duration   time.Duration
}

// Comparison outcomes of both scenarios from the same initial population
type Comparison struct {
	Config          Config // Seed holds the seed actually used
	InitialSize     int
	InitialDiseased int
	BAU             *Outcome
	Policy          *Outcome
}

// Outcomes returns BAU then Policy
func (c *Comparison) Outcomes() []*Outcome {
	return []*Outcome{c.BAU, c.Policy}
}

// Report builds the exportable form of the comparison
func (c *Comparison) Report(generatedAt time.Time) types.ReportData {
	data := types.ReportData{
		Parameters:     c.Config.Parameters,
		PopulationSize: c.Config.PopulationSize,
		ReductionRate:  c.Config.ReductionRate,
		Seed:           c.Config.Seed,
		GeneratedAt:    generatedAt,
	}
	for _, o := range c.Outcomes() {
		data.Scenarios = append(data.Scenarios, types.ScenarioReport{
			Name:       o.Name,
			Incidence:  o.Parameters.Incidence,
			Stats:      o.Stats,
			Prevalence: o.Prevalence,
		})
	}
	return data
}

// PolicyIncidence returns incidence reduced by the policy
func PolicyIncidence(incidence, reductionRate float64) float64 {
	return incidence * (1 - reductionRate)
}

// Runner runs scenario comparisons
type Runner struct {
	config   Config
	recorder Recorder
	log      *slog.Logger
}

// NewRunner validates config and creates a Runner.
//
// Parameters:
//   - config: comparison configuration
//   - recorder: optional, may be nil
//
// The Runner logs through the slog default logger current at this call.
//
// Returns:
//   - *Runner: Runner instance
//   - error: wraps simulator.ErrInvalidParameter
func NewRunner(config Config, recorder Recorder) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Seed == 0 {
		config.Seed = uint64(time.Now().UnixNano())
	}
	return &Runner{
		config:   config,
		recorder: recorder,
		log:      slog.Default(),
	}, nil
}

// Config returns the resolved configuration
func (r *Runner) Config() Config {
	return r.config
}

// Run seeds the initial population and runs both scenarios
func (r *Runner) Run() (*Comparison, error) {
	cfg := r.config
	params := cfg.Parameters

	seeder := simulator.New(deriveSeed(cfg.Seed, streamPopulation))
	initial, err := seeder.NewPopulation(cfg.PopulationSize, params.InitialPrevalence)
	if err != nil {
		return nil, fmt.Errorf("failed to seed population: %w", err)
	}

	r.log.Info("Initial population seeded",
		"size", len(initial),
		"diseased", initial.Count(types.Diseased),
		"seed", cfg.Seed,
	)

	jobs := []struct {
		name   types.ScenarioName
		params types.SimulationParameters
		seed   uint64
	}{
		{types.ScenarioBAU, params, deriveSeed(cfg.Seed, streamBAU)},
		{types.ScenarioPolicy, params.WithIncidence(PolicyIncidence(params.Incidence, cfg.ReductionRate)), deriveSeed(cfg.Seed, streamPolicy)},
	}

	outcomes := make(map[types.ScenarioName]*Outcome, len(jobs))

	if cfg.Parallel {
		workers := cfg.Workers
		if workers == 0 {
			workers = len(jobs)
		}
		pool := worker.NewPool(len(jobs))
		if err := pool.Start(workers); err != nil {
			return nil, fmt.Errorf("failed to start worker pool: %w", err)
		}

		for _, j := range jobs {
			task := worker.Task{
				Scenario: j.name,
				Execute: func() (interface{}, error) {
					return r.runScenario(j.name, j.params, initial.Clone(), j.seed)
				},
			}
			if err := pool.Submit(task); err != nil {
				pool.Stop()
				return nil, fmt.Errorf("failed to submit scenario %s: %w", j.name, err)
			}
		}

		var firstErr error
		for range jobs {
			result, err := pool.ReceiveResult()
			if err != nil {
				firstErr = err
				break
			}
			if result.Error != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("scenario %s failed: %w", result.Scenario, result.Error)
				}
				continue
			}
			outcomes[result.Scenario] = result.Value.(*Outcome)
		}
		pool.Stop()

		if firstErr != nil {
			return nil, firstErr
		}
	} else {
		for _, j := range jobs {
			outcome, err := r.runScenario(j.name, j.params, initial.Clone(), j.seed)
			if err != nil {
				return nil, fmt.Errorf("scenario %s failed: %w", j.name, err)
			}
			outcomes[j.name] = outcome
		}
	}

	return &Comparison{
		Config:          cfg,
		InitialSize:     len(initial),
		InitialDiseased: initial.Count(types.Diseased),
		BAU:             outcomes[types.ScenarioBAU],
		Policy:          outcomes[types.ScenarioPolicy],
	}, nil
}

// runScenario simulates one scenario on an owned population copy
func (r *Runner) runScenario(name types.ScenarioName, params types.SimulationParameters, initial types.Population, seed uint64) (*Outcome, error) {
	start := time.Now()
	years := params.Years()

	sim := simulator.New(seed)
	snapshots, stats, err := sim.Simulate(years, initial, params)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Name:       name,
		Parameters: params,
		Snapshots:  snapshots,
		Stats:      stats,
		Prevalence: prevalence.Calculate(years, snapshots),
		Duration:   time.Since(start),
	}

	if r.recorder != nil {
		for _, st := range stats {
			r.recorder.RecordYear(name, st)
		}
		r.recorder.ObserveRun(name, outcome.Duration.Seconds())
	}

	last := stats[len(stats)-1]
	r.log.Info("Scenario completed",
		"scenario", name,
		"incidence", params.Incidence,
		"years", len(years),
		"final_population", last.TotalPopulation,
		"final_diseased", last.Diseased,
		"duration", outcome.Duration,
	)

	return outcome, nil
}

// deriveSeed splitmix64 step; keeps derived streams uncorrelated and non-zero
func deriveSeed(seed, stream uint64) uint64 {
	z := seed + (stream+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	if z == 0 {
		z = 1
	}
	return z
}
