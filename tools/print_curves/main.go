package main

import (
	"context"
	"fmt"
	"os"

	"github.com/npsmodel/projection/internal/calculation"
	"github.com/npsmodel/projection/internal/config"
)

// Prints the interpolated assumption curves and the demographic indicators
// every tenth year, for eyeballing a configuration change.
func main() {
	cfg := config.DefaultConfiguration()
	if len(os.Args) > 1 {
		loaded, err := config.NewInputParser().LoadFromFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	start, end := cfg.Horizon.StartYear, cfg.Horizon.EndYear

	inflation := calculation.MustRateCurve("inflation_rate", cfg.Economic.InflationRate)
	macro, err := calculation.NewMacroEconomyProjector(start, cfg.Economic, inflation)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("Macro curves:")
	fmt.Printf("%-6s %8s %8s %8s %10s %16s\n", "YEAR", "GDP", "WAGE", "CPI", "CUM CPI", "NOMINAL GDP")
	for _, s := range macro.Trajectory(start, end) {
		if (s.Year-start)%10 != 0 && s.Year != end {
			continue
		}
		fmt.Printf("%-6d %7.2f%% %7.2f%% %7.2f%% %10.4f %16s\n", s.Year,
			s.GDPGrowthRate*100, s.NominalWageGrowthRate*100, s.InflationRate*100,
			s.CumulativeInflation, s.NominalGDP.StringFixed(0))
	}

	engine, err := calculation.NewProjectionEngine(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	demo, err := engine.Demographics(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println()
	fmt.Println("Demographics:")
	fmt.Printf("%-6s %14s %14s %14s %8s\n", "YEAR", "TOTAL", "WORKING", "ELDERLY", "DEP")
	for _, d := range demo {
		if (d.Year-start)%10 != 0 && d.Year != end {
			continue
		}
		fmt.Printf("%-6d %14.0f %14.0f %14.0f %8.1f\n", d.Year,
			d.TotalPopulation, d.WorkingAgePopulation, d.ElderlyPopulation, d.ElderlyDependency)
	}
}
