// Package prevalence turns per-year population snapshots into percentage series
package prevalence

import (
	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// Of returns the Healthy, Diseased and Dead percentages of one snapshot.
// An empty snapshot reports 0 for all three rather than NaN.
func Of(pop types.Population) (healthy, diseased, dead float64) {
	if len(pop) == 0 {
		return 0, 0, 0
	}

	var counts [3]int
	for _, s := range pop {
		if int(s) < len(counts) {
			counts[s]++
		}
	}

	total := float64(len(pop))
	return 100 * float64(counts[types.Healthy]) / total,
		100 * float64(counts[types.Diseased]) / total,
		100 * float64(counts[types.Dead]) / total
}

// Calculate builds the three parallel percentage series for snapshots.
// years is copied as-is and is expected to line up with snapshots.
func Calculate(years []int, snapshots []types.Population) types.PrevalenceSeries {
	series := types.PrevalenceSeries{
		Years:    append([]int(nil), years...),
		Healthy:  make([]float64, 0, len(snapshots)),
		Diseased: make([]float64, 0, len(snapshots)),
		Dead:     make([]float64, 0, len(snapshots)),
	}

	for _, snap := range snapshots {
		h, d, x := Of(snap)
		series.Healthy = append(series.Healthy, h)
		series.Diseased = append(series.Diseased, d)
		series.Dead = append(series.Dead, x)
	}

	return series
}
