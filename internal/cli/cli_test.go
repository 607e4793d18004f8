package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/policy-impact/internal/export"
	"github.com/ChuLiYu/policy-impact/pkg/types"
)

func TestBuildCLI(t *testing.T) {
	cmd := BuildCLI()

	assert.NotNil(t, cmd, "BuildCLI should return a non-nil command")
	assert.Equal(t, "policysim", cmd.Use, "Root command should be 'policysim'")
	assert.Equal(t, "1.0.0", cmd.Version, "Version should be 1.0.0")

	commands := cmd.Commands()
	assert.Len(t, commands, 3, "Should have 3 subcommands")

	commandNames := make(map[string]bool)
	for _, c := range commands {
		commandNames[c.Use] = true
	}

	assert.True(t, commandNames["run"], "Should have 'run' command")
	assert.True(t, commandNames["render"], "Should have 'render' command")
	assert.True(t, commandNames["status"], "Should have 'status' command")

	configFlag := cmd.PersistentFlags().Lookup("config")
	assert.NotNil(t, configFlag, "Should have --config flag")
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "configs/default.yaml", configFlag.DefValue, "Default config path should be configs/default.yaml")
}

func TestBuildRunCommand(t *testing.T) {
	cmd := buildRunCommand()

	assert.NotNil(t, cmd, "buildRunCommand should return a non-nil command")
	assert.Equal(t, "run", cmd.Use, "Command should be 'run'")
	assert.Contains(t, cmd.Short, "Start", "Short description should mention 'Start'")
	assert.NotNil(t, cmd.RunE, "RunE function should be set")

	for _, name := range []string{"start-year", "end-year", "population", "incidence", "reduction", "seed", "parallel", "workers", "output", "backup", "no-color"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "Should have --%s flag", name)
	}
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)
}

func TestBuildRenderCommand(t *testing.T) {
	cmd := buildRenderCommand()

	assert.Equal(t, "render", cmd.Use, "Command should be 'render'")

	fileFlag := cmd.Flags().Lookup("file")
	require.NotNil(t, fileFlag, "Should have --file flag")
	assert.Equal(t, "f", fileFlag.Shorthand, "Should have -f shorthand")
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

func TestBuildStatusCommand(t *testing.T) {
	cmd := buildStatusCommand()

	assert.Equal(t, "status", cmd.Use, "Command should be 'status'")
	assert.Contains(t, cmd.Short, "status", "Short description should mention 'status'")
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

// ============================================================================
// Config Tests
// ============================================================================

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
simulation:
  start_year: 2030
  end_year: 2035
  population: 2500
  incidence: 0.05
  seed: 7
  parallel: true
  workers: 1
policy:
  incidence_reduction: 0.5
output:
  no_color: true
metrics:
  enabled: true
  port: 9100
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2030, cfg.Simulation.StartYear)
	assert.Equal(t, 2035, cfg.Simulation.EndYear)
	assert.Equal(t, 2500, cfg.Simulation.Population)
	assert.Equal(t, 0.05, cfg.Simulation.Incidence)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.True(t, cfg.Simulation.Parallel)
	assert.Equal(t, 1, cfg.ScenarioConfig().Workers)
	assert.Equal(t, 0.5, cfg.Policy.IncidenceReduction)
	assert.True(t, cfg.Output.NoColor)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9100, cfg.Metrics.Port)

	// keys not present keep their defaults
	assert.Equal(t, 0.005, cfg.Simulation.CaseFatality)
	assert.Equal(t, 0.001, cfg.Simulation.Mortality)
	assert.Equal(t, 0.1, cfg.Simulation.InitialPrevalence)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "simulation: [unclosed")

	cfg, err := loadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	sc := cfg.ScenarioConfig()

	assert.Equal(t, 2024, sc.Parameters.StartYear)
	assert.Equal(t, 2040, sc.Parameters.EndYear)
	assert.Equal(t, 100000, sc.PopulationSize)
	assert.Equal(t, 0.2, sc.ReductionRate)
	assert.Equal(t, 0.01, sc.Parameters.Incidence)
	assert.Equal(t, 0.01, sc.Parameters.BirthRate)
	assert.Zero(t, sc.Seed)
	assert.NoError(t, sc.Validate())
}

// ============================================================================
// Command Execution Tests
// ============================================================================

const smallConfig = `
simulation:
  start_year: 2024
  end_year: 2026
  population: 500
  seed: 11
policy:
  incidence_reduction: 0.2
output:
  no_color: true
logging:
  level: error
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := BuildCLI()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunCommand_ExportsReport(t *testing.T) {
	cfgPath := writeConfig(t, smallConfig)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	out, err := execute(t, "run", "-c", cfgPath, "-o", reportPath, "--end-year", "2028", "--parallel", "--workers", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Business as Usual")
	assert.Contains(t, out, "2028")

	report, err := export.NewManager(reportPath).Load()
	require.NoError(t, err)
	assert.Equal(t, 2028, report.Parameters.EndYear, "flag should override the config file")
	assert.Equal(t, uint64(11), report.Seed)
	assert.Equal(t, 500, report.PopulationSize)
	require.Len(t, report.Scenarios, 2)
	assert.Len(t, report.Scenarios[0].Stats, 5)
	assert.Equal(t, types.ScenarioPolicy, report.Scenarios[1].Name)
}

func TestRunCommand_SameSeedSameReport(t *testing.T) {
	cfgPath := writeConfig(t, smallConfig)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")

	_, err := execute(t, "run", "-c", cfgPath, "-o", a)
	require.NoError(t, err)
	_, err = execute(t, "run", "-c", cfgPath, "-o", b, "--parallel")
	require.NoError(t, err)

	ra, err := export.NewManager(a).Load()
	require.NoError(t, err)
	rb, err := export.NewManager(b).Load()
	require.NoError(t, err)
	assert.Equal(t, ra.Scenarios, rb.Scenarios)
}

func TestRunCommand_InvalidParameters(t *testing.T) {
	cfgPath := writeConfig(t, smallConfig)

	_, err := execute(t, "run", "-c", cfgPath, "--reduction", "1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parameters")
}

func TestRenderCommand(t *testing.T) {
	cfgPath := writeConfig(t, smallConfig)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	_, err := execute(t, "run", "-c", cfgPath, "-o", reportPath)
	require.NoError(t, err)

	out, err := execute(t, "render", "-f", reportPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Parameters")
	assert.Contains(t, out, "Policy")
	assert.Contains(t, out, "Seed                11")
}

func TestRenderCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "render", "-f", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, export.ErrReportNotFound)
}

func TestStatusCommand(t *testing.T) {
	cfgPath := writeConfig(t, smallConfig)

	out, err := execute(t, "status", "-c", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Configuration:")
	assert.Contains(t, out, cfgPath)
	assert.Contains(t, out, "2024 - 2026")
	assert.Contains(t, out, "Disabled")
	assert.NotContains(t, out, "Invalid configuration")
}

func TestStatusCommand_FlagsInvalidConfig(t *testing.T) {
	cfgPath := writeConfig(t, `
simulation:
  incidence: 2
`)

	out, err := execute(t, "status", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid configuration")
}
