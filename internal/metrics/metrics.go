// ============================================================================
// Policy Impact Metrics - Prometheus Instrumentation
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Expose the progress of scenario runs as Prometheus metrics
//
// Metric Families (all labelled by scenario = bau | policy):
//
//   1. Counters - cumulative across runs in one process:
//      - simulation_births_total: individuals born
//      - simulation_deaths_total: individuals removed as Dead
//      - simulation_years_total: simulated years
//
//   2. Gauges - value of the most recent simulated year:
//      - simulation_population{state}: healthy / diseased / total
//      - simulation_current_year: last simulated year number
//
//   3. Histogram:
//      - simulation_run_duration_seconds: wall time of one scenario run
//
// Example Queries:
//
//   # diseased share under the policy
//   simulation_population{scenario="policy",state="diseased"}
//     / simulation_population{scenario="policy",state="total"}
//
//   # deaths avoided by the policy so far
//   simulation_deaths_total{scenario="bau"} - ignoring(scenario) simulation_deaths_total{scenario="policy"}
//
// HTTP Endpoint:
//   /metrics, served by StartServer when metrics.enabled is set
//
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"

	"github.com/ChuLiYu/policy-impact/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values of simulation_population
const (
	StateHealthy  = "healthy"
	StateDiseased = "diseased"
	StateTotal    = "total"
)

// Collector Prometheus metrics of scenario runs
type Collector struct {
	births *prometheus.CounterVec
	deaths *prometheus.CounterVec
	years  *prometheus.CounterVec

	population  *prometheus.GaugeVec
	currentYear *prometheus.GaugeVec

	runDuration *prometheus.HistogramVec
}

// NewCollector creates the collector and registers it with the default registerer
func NewCollector() *Collector {
	c := &Collector{
		births: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_births_total",
			Help: "Total number of individuals born",
		}, []string{"scenario"}),
		deaths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_deaths_total",
			Help: "Total number of dead individuals removed from the population",
		}, []string{"scenario"}),
		years: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_years_total",
			Help: "Total number of simulated years",
		}, []string{"scenario"}),
		population: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simulation_population",
			Help: "Population by health state after the most recent simulated year",
		}, []string{"scenario", "state"}),
		currentYear: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simulation_current_year",
			Help: "Most recent simulated year",
		}, []string{"scenario"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simulation_run_duration_seconds",
			Help:    "Wall time of one scenario run in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"scenario"}),
	}

	prometheus.MustRegister(c.births)
	prometheus.MustRegister(c.deaths)
	prometheus.MustRegister(c.years)
	prometheus.MustRegister(c.population)
	prometheus.MustRegister(c.currentYear)
	prometheus.MustRegister(c.runDuration)

	return c
}

// RecordYear records one simulated year of scenario
func (c *Collector) RecordYear(scenario types.ScenarioName, stat types.YearlyStatistic) {
	s := string(scenario)

	c.births.WithLabelValues(s).Add(float64(stat.Births))
	c.deaths.WithLabelValues(s).Add(float64(stat.Deaths))
	c.years.WithLabelValues(s).Inc()

	c.population.WithLabelValues(s, StateHealthy).Set(float64(stat.Healthy))
	c.population.WithLabelValues(s, StateDiseased).Set(float64(stat.Diseased))
	c.population.WithLabelValues(s, StateTotal).Set(float64(stat.TotalPopulation))
	c.currentYear.WithLabelValues(s).Set(float64(stat.Year))
}

// ObserveRun records the wall time of one scenario run
func (c *Collector) ObserveRun(scenario types.ScenarioName, seconds float64) {
	c.runDuration.WithLabelValues(string(scenario)).Observe(seconds)
}

// Handler returns the /metrics handler for the default gatherer
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer serves /metrics on port. Blocks until the server fails.
//
// Parameters:
//   - port: HTTP listen port
//
// Returns:
//   - error: listen or serve failure
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
