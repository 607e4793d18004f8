package export

// ============================================================================
// Report checksum
// Responsibility: compute and verify the CRC32 of an exported report
// ============================================================================

import (
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// CalculateChecksum returns the CRC32-IEEE of the compact JSON encoding of
// data with its Checksum field zeroed.
func CalculateChecksum(data types.ReportData) (uint32, error) {
	data.Checksum = 0
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to encode report for checksum: %w", err)
	}
	return crc32.ChecksumIEEE(raw), nil
}

// VerifyChecksum reports whether data carries the checksum of its own content
func VerifyChecksum(data types.ReportData) (bool, error) {
	expected, err := CalculateChecksum(data)
	if err != nil {
		return false, err
	}
	return data.Checksum == expected, nil
}
