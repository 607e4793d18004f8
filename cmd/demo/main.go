package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ChuLiYu/policy-impact/internal/prevalence"
	"github.com/ChuLiYu/policy-impact/internal/render"
	"github.com/ChuLiYu/policy-impact/internal/simulator"
	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// demoCase one fixed-outcome run
type demoCase struct {
	title   string
	initial types.Population
	params  types.SimulationParameters
	expect  string
}

func main() {
	cases := []demoCase{
		{
			title:   "Everyone falls ill",
			initial: types.NewUniformPopulation(1000, types.Healthy),
			params:  types.SimulationParameters{Incidence: 1, StartYear: 2024, EndYear: 2024},
			expect:  "Diseased = 1,000, Healthy = 0, Dead = 0",
		},
		{
			title:   "Everyone dies of the disease",
			initial: types.NewUniformPopulation(1000, types.Diseased),
			params:  types.SimulationParameters{CaseFatality: 1, StartYear: 2024, EndYear: 2024, InitialPrevalence: 1},
			expect:  "Deaths = 1,000, Total Population = 0",
		},
	}

	seed := uint64(1)
	if len(os.Args) > 1 {
		if _, err := fmt.Sscan(os.Args[1], &seed); err != nil {
			log.Fatalf("Invalid seed %q: %v", os.Args[1], err)
		}
	}

	r := render.New(render.Options{})
	sim := simulator.New(seed)

	for i, c := range cases {
		years := c.params.Years()
		snapshots, stats, err := sim.Simulate(years, c.initial, c.params)
		if err != nil {
			log.Fatalf("Simulation failed: %v", err)
		}

		fmt.Printf("\n🧪 Case %d: %s\n", i+1, c.title)
		fmt.Printf("   expected: %s\n\n", c.expect)
		fmt.Println(r.StatsTable("Yearly statistics", stats))

		series := prevalence.Calculate(years, snapshots)
		fmt.Printf("\n📊 Prevalence %d: healthy %s, diseased %s, dead %s\n",
			years[0],
			r.Percent(series.Healthy[0]),
			r.Percent(series.Diseased[0]),
			r.Percent(series.Dead[0]),
		)
	}

	fmt.Println("\n✓ Demo completed")
}
