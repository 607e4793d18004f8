// ============================================================================
// Policy Impact CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Collect simulation parameters, run the Business as Usual and
//          Policy scenarios, and print the comparison
//
// Command Structure:
//   policysim                      # Root command
//   ├── run                        # Run both scenarios and print tables
//   │   ├── --output, -o           # Also export the report as JSON
//   │   └── --seed, --parallel ... # Override config values
//   ├── render                     # Print a previously exported report
//   │   └── --file, -f
//   ├── status                     # Show the effective configuration
//   ├── --config, -c               # Config file (default: configs/default.yaml)
//   ├── --version
//   └── --help
//
// Configuration:
//   YAML file with sections simulation, policy, output, metrics, logging.
//   Missing keys keep their defaults; a missing default config file means
//   "all defaults". Flags override the file.
//
// run Command:
//   1. Load config, apply flag overrides
//   2. Validate everything before simulating
//   3. Run both scenarios (optionally in parallel)
//   4. Print parameters, yearly tables, prevalence and summary
//   5. Export the report if --output is set
//   6. If metrics are enabled, keep serving /metrics until SIGINT/SIGTERM
//
// ============================================================================

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/policy-impact/internal/export"
	"github.com/ChuLiYu/policy-impact/internal/metrics"
	"github.com/ChuLiYu/policy-impact/internal/render"
	"github.com/ChuLiYu/policy-impact/internal/scenario"
	"github.com/ChuLiYu/policy-impact/pkg/types"
)

const defaultConfigPath = "configs/default.yaml"

// Config represents the complete configuration file
// Maps config file fields through YAML tags
type Config struct {
	Simulation struct {
		StartYear         int     `yaml:"start_year"`
		EndYear           int     `yaml:"end_year"`
		Population        int     `yaml:"population"`
		InitialPrevalence float64 `yaml:"initial_prevalence"`
		Incidence         float64 `yaml:"incidence"`
		CaseFatality      float64 `yaml:"case_fatality"`
		Mortality         float64 `yaml:"mortality"`
		BirthRate         float64 `yaml:"birth_rate"`
		Seed              uint64  `yaml:"seed"`
		Parallel          bool    `yaml:"parallel"`
		Workers           int     `yaml:"workers"`
	} `yaml:"simulation"`

	Policy struct {
		IncidenceReduction float64 `yaml:"incidence_reduction"`
	} `yaml:"policy"`

	Output struct {
		Report  string `yaml:"report"`
		Backup  bool   `yaml:"backup"`
		NoColor bool   `yaml:"no_color"`
	} `yaml:"output"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// defaultConfig returns the defaults of the original parameter form
func defaultConfig() *Config {
	var cfg Config
	cfg.Simulation.StartYear = 2024
	cfg.Simulation.EndYear = 2040
	cfg.Simulation.Population = 100000
	cfg.Simulation.InitialPrevalence = 0.1
	cfg.Simulation.Incidence = 0.01
	cfg.Simulation.CaseFatality = 0.005
	cfg.Simulation.Mortality = 0.001
	cfg.Simulation.BirthRate = 0.01
	cfg.Policy.IncidenceReduction = 0.2
	cfg.Metrics.Port = 9090
	cfg.Logging.Level = "info"
	return &cfg
}

// ScenarioConfig converts the file configuration into a runner configuration
func (c *Config) ScenarioConfig() scenario.Config {
	return scenario.Config{
		Parameters: types.SimulationParameters{
			Incidence:         c.Simulation.Incidence,
			CaseFatality:      c.Simulation.CaseFatality,
			Mortality:         c.Simulation.Mortality,
			BirthRate:         c.Simulation.BirthRate,
			StartYear:         c.Simulation.StartYear,
			EndYear:           c.Simulation.EndYear,
			InitialPrevalence: c.Simulation.InitialPrevalence,
		},
		PopulationSize: c.Simulation.Population,
		ReductionRate:  c.Policy.IncidenceReduction,
		Seed:           c.Simulation.Seed,
		Parallel:       c.Simulation.Parallel,
		Workers:        c.Simulation.Workers,
	}
}

var configFile string

// BuildCLI builds the root command
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "policysim",
		Short: "policysim: simulate the impact of a policy on disease outcomes",
		Long: `policysim advances a population through Healthy, Diseased and Dead
states year by year and compares two scenarios:
- Business as Usual: baseline incidence
- Policy: incidence reduced by the policy
Both scenarios start from the same initial population.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigPath, "config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildRenderCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

// runOptions flag values of the run command
type runOptions struct {
	startYear  int
	endYear    int
	population int
	reduction  float64
	incidence  float64
	seed       uint64
	parallel   bool
	workers    int
	output     string
	backup     bool
	noColor    bool
}

func buildRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a simulation of both scenarios",
		Long:  "Run the Business as Usual and Policy scenarios and print yearly statistics and prevalence",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyRunOverrides(cmd, cfg, opts)
			return runSimulation(cmd.OutOrStdout(), cfg)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.startYear, "start-year", 0, "first simulated year (inclusive)")
	f.IntVar(&opts.endYear, "end-year", 0, "last simulated year (inclusive)")
	f.IntVar(&opts.population, "population", 0, "initial population size")
	f.Float64Var(&opts.incidence, "incidence", 0, "baseline incidence probability")
	f.Float64Var(&opts.reduction, "reduction", 0, "policy incidence reduction rate")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed (0 = from clock)")
	f.BoolVar(&opts.parallel, "parallel", false, "run both scenarios concurrently")
	f.IntVar(&opts.workers, "workers", 0, "worker goroutines when parallel (0 = one per scenario)")
	f.StringVarP(&opts.output, "output", "o", "", "export the report as JSON to this file")
	f.BoolVar(&opts.backup, "backup", false, "keep an existing report file as a timestamped backup")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colors")

	return cmd
}

// applyRunOverrides copies every flag the user actually set onto cfg
func applyRunOverrides(cmd *cobra.Command, cfg *Config, opts runOptions) {
	f := cmd.Flags()
	if f.Changed("start-year") {
		cfg.Simulation.StartYear = opts.startYear
	}
	if f.Changed("end-year") {
		cfg.Simulation.EndYear = opts.endYear
	}
	if f.Changed("population") {
		cfg.Simulation.Population = opts.population
	}
	if f.Changed("incidence") {
		cfg.Simulation.Incidence = opts.incidence
	}
	if f.Changed("reduction") {
		cfg.Policy.IncidenceReduction = opts.reduction
	}
	if f.Changed("seed") {
		cfg.Simulation.Seed = opts.seed
	}
	if f.Changed("parallel") {
		cfg.Simulation.Parallel = opts.parallel
	}
	if f.Changed("workers") {
		cfg.Simulation.Workers = opts.workers
	}
	if f.Changed("output") {
		cfg.Output.Report = opts.output
	}
	if f.Changed("backup") {
		cfg.Output.Backup = opts.backup
	}
	if f.Changed("no-color") {
		cfg.Output.NoColor = opts.noColor
	}
}

func runSimulation(out io.Writer, cfg *Config) error {
	if err := configureLogging(cfg.Logging.Level); err != nil {
		return err
	}
	log := slog.Default()

	var recorder scenario.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewCollector()
	}

	runner, err := scenario.NewRunner(cfg.ScenarioConfig(), recorder)
	if err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}

	log.Info("Starting simulation",
		"years", fmt.Sprintf("%d-%d", cfg.Simulation.StartYear, cfg.Simulation.EndYear),
		"population", cfg.Simulation.Population,
		"parallel", cfg.Simulation.Parallel,
	)

	cmp, err := runner.Run()
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	report := cmp.Report(time.Now().UTC())
	r := render.New(render.Options{NoColor: cfg.Output.NoColor})
	if _, err := io.WriteString(out, r.Report(report)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.Output.Report != "" {
		if err := writeReport(cfg.Output.Report, cfg.Output.Backup, report); err != nil {
			return err
		}
		log.Info("Report exported", "path", cfg.Output.Report)
	}

	if cfg.Metrics.Enabled {
		return serveMetrics(cfg.Metrics.Port)
	}
	return nil
}

func writeReport(path string, backup bool, report types.ReportData) error {
	manager := export.NewManager(path)
	if backup {
		old, err := manager.WriteWithBackup(report)
		if err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		if old != "" {
			slog.Default().Info("Previous report kept", "path", old)
		}
		return nil
	}
	if err := manager.Write(report); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	return nil
}

// serveMetrics serves /metrics until SIGINT or SIGTERM
func serveMetrics(port int) error {
	log := slog.Default()
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting metrics server", "addr", fmt.Sprintf(":%d", port))
		errCh <- metrics.StartServer(port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		log.Info("Received shutdown signal, stopping metrics server")
		return nil
	case err := <-errCh:
		return fmt.Errorf("metrics server error: %w", err)
	}
}

func buildRenderCommand() *cobra.Command {
	var reportFile string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an exported report",
		Long:  "Load a JSON report written by 'run --output' and print its tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reportFile == "" {
				return fmt.Errorf("report file is required (use --file or -f)")
			}
			return renderReport(cmd.OutOrStdout(), reportFile, noColor)
		},
	}

	cmd.Flags().StringVarP(&reportFile, "file", "f", "", "JSON report file")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	cmd.MarkFlagRequired("file")

	return cmd
}

func renderReport(out io.Writer, path string, noColor bool) error {
	report, err := export.NewManager(path).Load()
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}

	r := render.New(render.Options{NoColor: noColor})
	_, err = io.WriteString(out, r.Report(report))
	return err
}

func buildStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration status",
		Long:  "Display the effective simulation, policy, output and metrics configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return showStatus(cmd.OutOrStdout(), cfg)
		},
	}
	return cmd
}

// statusLabelWidth display width of the label column; labels carry emoji
const statusLabelWidth = 24

func statusLine(b *strings.Builder, label string, value interface{}) {
	fmt.Fprintf(b, "  %s %v\n", runewidth.FillRight(label, statusLabelWidth), value)
}

func showStatus(out io.Writer, cfg *Config) error {
	var b strings.Builder

	b.WriteString("📋 Configuration:\n")
	statusLine(&b, "└─ Config File:", configFile)
	statusLine(&b, "└─ Log Level:", cfg.Logging.Level)
	b.WriteString("\n")

	b.WriteString("🧪 Simulation:\n")
	statusLine(&b, "├─ Years:", fmt.Sprintf("%d - %d", cfg.Simulation.StartYear, cfg.Simulation.EndYear))
	statusLine(&b, "├─ Population:", cfg.Simulation.Population)
	statusLine(&b, "├─ Initial Prevalence:", cfg.Simulation.InitialPrevalence)
	statusLine(&b, "├─ Incidence:", cfg.Simulation.Incidence)
	statusLine(&b, "├─ Case Fatality:", cfg.Simulation.CaseFatality)
	statusLine(&b, "├─ Mortality:", cfg.Simulation.Mortality)
	statusLine(&b, "├─ Birth Rate:", cfg.Simulation.BirthRate)
	seed := "from clock"
	if cfg.Simulation.Seed != 0 {
		seed = fmt.Sprintf("%d", cfg.Simulation.Seed)
	}
	statusLine(&b, "├─ Seed:", seed)
	statusLine(&b, "├─ Parallel:", cfg.Simulation.Parallel)
	statusLine(&b, "└─ Workers:", cfg.Simulation.Workers)
	b.WriteString("\n")

	b.WriteString("🏛  Policy:\n")
	statusLine(&b, "└─ Incidence Reduction:", cfg.Policy.IncidenceReduction)
	b.WriteString("\n")

	b.WriteString("💾 Output:\n")
	report := cfg.Output.Report
	if report == "" {
		report = "(terminal only)"
	}
	statusLine(&b, "└─ Report:", report)
	b.WriteString("\n")

	b.WriteString("📡 Metrics:\n")
	if cfg.Metrics.Enabled {
		statusLine(&b, "└─ Status:", fmt.Sprintf("✅ Enabled on http://localhost:%d/metrics", cfg.Metrics.Port))
	} else {
		statusLine(&b, "└─ Status:", "⚠️  Disabled")
	}

	if err := cfg.ScenarioConfig().Validate(); err != nil {
		fmt.Fprintf(&b, "\n❌ Invalid configuration: %v\n", err)
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// configureLogging installs a text slog handler on stderr at level
func configureLogging(level string) error {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return cfg, nil
}
