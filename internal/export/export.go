package export

// ============================================================================
// Responsibilities:
// 1. Serialize a finished scenario comparison into a JSON report file
// 2. Atomic write (temp file + rename) so a reader never sees a partial file
// 3. Validate the schema version and checksum when a report is loaded back
// ============================================================================

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// SchemaVersion current report layout
const SchemaVersion = 1

var (
	ErrCorruptedReport     = errors.New("report file is corrupted")
	ErrIncompatibleVersion = errors.New("report schema version is incompatible")
	ErrReportNotFound      = errors.New("report file not found")
	ErrChecksumMismatch    = errors.New("report checksum mismatch")
)

// Manager reads and writes one report file
type Manager struct {
	path string     // report file path
	mu   sync.Mutex // serializes file operations
}

// NewManager creates a report manager for path
func NewManager(path string) *Manager {
	return &Manager{
		path: path,
	}
}

// Write atomically writes the report.
//
// Flow:
// 1. write <path>.tmp
// 2. os.Rename over the target
//
// Parameters:
//   - data: report; SchemaVer and Checksum are stamped by Write
//
// Returns:
//   - error: marshal or file system failure
func (m *Manager) Write(data types.ReportData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.write(data)
}

func (m *Manager) write(data types.ReportData) error {
	data.SchemaVer = SchemaVersion

	sum, err := CalculateChecksum(data)
	if err != nil {
		return err
	}
	data.Checksum = sum

	// indented for humans reading the export directly
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tmpPath := m.path + ".tmp"

	if err := os.WriteFile(tmpPath, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write temp report: %w", err)
	}

	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename report: %w", err)
	}

	return nil
}

// Load reads a report back.
//
// Returns:
//   - types.ReportData: the report
//   - error: ErrReportNotFound, ErrCorruptedReport, ErrIncompatibleVersion
//     or ErrChecksumMismatch
func (m *Manager) Load() (types.ReportData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var data types.ReportData

	jsonBytes, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, fmt.Errorf("%w: %s", ErrReportNotFound, m.path)
		}
		return data, fmt.Errorf("failed to read report: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return data, fmt.Errorf("%w: %v", ErrCorruptedReport, err)
	}

	if data.SchemaVer != SchemaVersion {
		return data, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleVersion, data.SchemaVer, SchemaVersion)
	}

	ok, err := VerifyChecksum(data)
	if err != nil {
		return data, err
	}
	if !ok {
		return data, fmt.Errorf("%w: %s", ErrChecksumMismatch, m.path)
	}

	return data, nil
}

// Exists reports whether the report file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// GetPath returns the report file path
func (m *Manager) GetPath() string {
	return m.path
}

// WriteWithBackup moves an existing report aside to <path>.<timestamp> and
// then writes data.
//
// Returns:
//   - string: backup path, empty when there was nothing to back up
//   - error: rename or write failure
func (m *Manager) WriteWithBackup(data types.ReportData) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var backupPath string
	if m.Exists() {
		backupPath = fmt.Sprintf("%s.%s", m.path, time.Now().Format("20060102_150405.000000000"))
		if err := os.Rename(m.path, backupPath); err != nil {
			return "", fmt.Errorf("failed to backup old report: %w", err)
		}
	}

	return backupPath, m.write(data)
}
