package export

// ============================================================================
// Report Manager Test File
// Purpose: Verify atomic write, load, schema version check, error handling
// ============================================================================

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ChuLiYu/policy-impact/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(seed uint64) types.ReportData {
	return types.ReportData{
		Parameters: types.SimulationParameters{
			Incidence:         0.01,
			CaseFatality:      0.005,
			Mortality:         0.001,
			BirthRate:         0.01,
			StartYear:         2024,
			EndYear:           2025,
			InitialPrevalence: 0.1,
		},
		PopulationSize: 1000,
		ReductionRate:  0.2,
		Seed:           seed,
		Scenarios: []types.ScenarioReport{
			{
				Name:      types.ScenarioBAU,
				Incidence: 0.01,
				Stats: []types.YearlyStatistic{
					{Year: 2024, Healthy: 895, Diseased: 105, Deaths: 1, Births: 10, TotalPopulation: 1000},
					{Year: 2025, Healthy: 896, Diseased: 112, Deaths: 2, Births: 10, TotalPopulation: 1008},
				},
				Prevalence: types.PrevalenceSeries{
					Years:    []int{2024, 2025},
					Healthy:  []float64{89.5, 88.9},
					Diseased: []float64{10.5, 11.1},
					Dead:     []float64{0, 0},
				},
			},
		},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// ============================================================================
// Basic Functionality Tests
// ============================================================================

// TestNewManager tests creating a manager
func TestNewManager(t *testing.T) {
	manager := NewManager("report.json")
	assert.NotNil(t, manager)
	assert.Equal(t, "report.json", manager.GetPath())
}

// TestWriteAndLoad tests writing and loading a report
func TestWriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	manager := NewManager(path)

	original := sampleReport(42)
	require.NoError(t, manager.Write(original))

	loaded, err := manager.Load()
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, loaded.SchemaVer)
	assert.Equal(t, original.Seed, loaded.Seed)
	assert.Equal(t, original.Parameters, loaded.Parameters)
	assert.Equal(t, original.Scenarios, loaded.Scenarios)
	assert.True(t, original.GeneratedAt.Equal(loaded.GeneratedAt))
}

// TestAtomicWrite a concurrent reader sees either the old or the new report
func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	manager := NewManager(path)
	require.NoError(t, manager.Write(sampleReport(1)))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		assert.NoError(t, manager.Write(sampleReport(2)))
	}()

	var loaded types.ReportData
	go func() {
		defer wg.Done()
		data, err := manager.Load()
		assert.NoError(t, err)
		loaded = data
	}()

	wg.Wait()
	assert.Contains(t, []uint64{1, 2}, loaded.Seed)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should not be left behind")
}

// TestExists tests file existence check
func TestExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	manager := NewManager(path)
	assert.False(t, manager.Exists())

	require.NoError(t, manager.Write(sampleReport(1)))
	assert.True(t, manager.Exists())
}

// ============================================================================
// Error Handling Tests
// ============================================================================

// TestLoadMissing a missing report is an error, not an empty report
func TestLoadMissing(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "missing.json"))
	_, err := manager.Load()
	assert.ErrorIs(t, err, ErrReportNotFound)
}

// TestVersionMismatch tests rejecting an unknown schema version
func TestVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	data := sampleReport(1)
	data.SchemaVer = 99
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0644))

	_, err = NewManager(path).Load()
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}

// TestCorrupted tests a file that is not JSON
func TestCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewManager(path).Load()
	assert.ErrorIs(t, err, ErrCorruptedReport)
}

// TestWriteFailure tests writing into a directory that does not exist
func TestWriteFailure(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "no", "such", "dir", "report.json"))
	assert.Error(t, manager.Write(sampleReport(1)))
}

// ============================================================================
// Backup Tests
// ============================================================================

// TestWriteWithBackup the previous report is kept next to the new one
func TestWriteWithBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	manager := NewManager(path)

	backup, err := manager.WriteWithBackup(sampleReport(1))
	require.NoError(t, err)
	assert.Empty(t, backup, "nothing to back up on first write")

	backup, err = manager.WriteWithBackup(sampleReport(2))
	require.NoError(t, err)
	require.NotEmpty(t, backup)

	old, err := NewManager(backup).Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), old.Seed)

	current, err := manager.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), current.Seed)
}

// ============================================================================
// Checksum Tests
// ============================================================================

// TestWriteStampsChecksum the written file carries a verifiable checksum
func TestWriteStampsChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, NewManager(path).Write(sampleReport(3)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var onDisk types.ReportData
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.NotZero(t, onDisk.Checksum)

	ok, err := VerifyChecksum(onDisk)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestChecksumMismatch a report edited after export is rejected
func TestChecksumMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, NewManager(path).Write(sampleReport(3)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var onDisk types.ReportData
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	onDisk.Scenarios[0].Stats[1].Diseased = 1

	tampered, err := json.Marshal(onDisk)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, tampered, 0644))

	_, err = NewManager(path).Load()
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestCalculateChecksumIgnoresStoredChecksum(t *testing.T) {
	data := sampleReport(5)
	a, err := CalculateChecksum(data)
	require.NoError(t, err)

	data.Checksum = 12345
	b, err := CalculateChecksum(data)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	data.Seed = 6
	c, err := CalculateChecksum(data)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
