package prevalence

import (
	"testing"

	"github.com/ChuLiYu/policy-impact/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	pop := types.Population{
		types.Healthy, types.Healthy, types.Healthy,
		types.Diseased,
	}

	h, d, x := Of(pop)
	assert.InDelta(t, 75.0, h, 1e-9)
	assert.InDelta(t, 25.0, d, 1e-9)
	assert.InDelta(t, 0.0, x, 1e-9)
}

func TestOfIncludesDead(t *testing.T) {
	pop := types.Population{types.Healthy, types.Dead}

	h, d, x := Of(pop)
	assert.InDelta(t, 50.0, h, 1e-9)
	assert.Zero(t, d)
	assert.InDelta(t, 50.0, x, 1e-9)
}

// TestOfEmptySnapshot an empty population reports zeros, never NaN
func TestOfEmptySnapshot(t *testing.T) {
	h, d, x := Of(types.Population{})
	assert.Zero(t, h)
	assert.Zero(t, d)
	assert.Zero(t, x)
}

// TestCalculateSumsToHundred every non-empty year sums to 100%
func TestCalculateSumsToHundred(t *testing.T) {
	snapshots := []types.Population{
		{types.Healthy, types.Diseased, types.Diseased},
		{types.Healthy, types.Healthy, types.Healthy, types.Healthy, types.Healthy, types.Healthy, types.Diseased},
		{},
		{types.Diseased},
	}
	years := []int{2024, 2025, 2026, 2027}

	series := Calculate(years, snapshots)
	require.Len(t, series.Healthy, 4)
	require.Len(t, series.Diseased, 4)
	require.Len(t, series.Dead, 4)
	assert.Equal(t, years, series.Years)

	for i, snap := range snapshots {
		sum := series.Healthy[i] + series.Diseased[i] + series.Dead[i]
		if len(snap) == 0 {
			assert.Zero(t, sum)
			continue
		}
		assert.InDelta(t, 100.0, sum, 1e-9, "year %d", years[i])
	}

	assert.InDelta(t, 100.0, series.Diseased[3], 1e-9)
}

func TestCalculateDoesNotMutate(t *testing.T) {
	snapshots := []types.Population{{types.Healthy, types.Diseased}}
	years := []int{2030}

	series := Calculate(years, snapshots)
	series.Years[0] = 1999

	assert.Equal(t, 2030, years[0])
	assert.Equal(t, types.Population{types.Healthy, types.Diseased}, snapshots[0])
}
