package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// benchmarkRun full comparison at the default population size
func benchmarkRun(b *testing.B, parallel bool) {
	cfg := testConfig()
	cfg.PopulationSize = 100000
	cfg.Parameters.EndYear = 2040
	cfg.Parallel = parallel

	runner, err := NewRunner(cfg, nil)
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := runner.Run()
		require.NoError(b, err)
	}
	b.StopTimer()

	b.ReportMetric(float64(cfg.PopulationSize*len(cfg.Parameters.Years())*2)*float64(b.N)/b.Elapsed().Seconds(), "individual-years/s")
}

func BenchmarkRunSequential(b *testing.B) { benchmarkRun(b, false) }

func BenchmarkRunParallel(b *testing.B) { benchmarkRun(b, true) }
