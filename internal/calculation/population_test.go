package calculation

import (
	"context"
	"testing"

	"github.com/npsmodel/projection/internal/config"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultProjector(t *testing.T, mutate func(p *domain.DemographicParams)) *PopulationProjector {
	t.Helper()
	params := config.DefaultConfiguration().Demographic
	if mutate != nil {
		mutate(&params)
	}
	pp, err := NewPopulationProjector(params)
	require.NoError(t, err)
	return pp
}

func defaultSeed(t *testing.T) domain.PopulationTable {
	t.Helper()
	cfg := config.DefaultConfiguration()
	seed, err := BuildSeedPopulation(cfg.Population, cfg.Demographic.MaxAge)
	require.NoError(t, err)
	return seed
}

func TestPopulationProjector_StepKeepsCohortsConsistent(t *testing.T) {
	pp := defaultProjector(t, nil)
	seed := defaultSeed(t)

	next, err := pp.Step(seed, 2024)
	require.NoError(t, err)
	require.Len(t, next, 201)

	for age, c := range next {
		assert.Equal(t, age, c.Age)
		assert.GreaterOrEqual(t, c.Male, 0.0)
		assert.GreaterOrEqual(t, c.Female, 0.0)
		assert.InDelta(t, c.Male+c.Female, c.Total, 1e-6, "age %d", age)
	}
	assert.Greater(t, next[0].Total, 0.0, "births")
	assert.Equal(t, next[0].Male, next[0].Female)
}

func TestPopulationProjector_StepDoesNotModifyInput(t *testing.T) {
	pp := defaultProjector(t, nil)
	seed := defaultSeed(t)
	before := append(domain.PopulationTable(nil), seed...)

	_, err := pp.Step(seed, 2024)
	require.NoError(t, err)
	assert.Equal(t, before, seed)
}

func TestPopulationProjector_PureDecay(t *testing.T) {
	pp := defaultProjector(t, func(p *domain.DemographicParams) {
		p.FertilityRate = domain.RateTable{2023: 0}
		p.NetMigration = domain.RateTable{2023: 0}
	})

	table := defaultSeed(t)
	for year := 2024; year <= 2060; year++ {
		next, err := pp.Step(table, year)
		require.NoError(t, err)
		assert.Less(t, next.Total(), table.Total(), "year %d", year)
		assert.Zero(t, next[0].Total, "no births in %d", year)
		table = next
	}
}

func TestPopulationProjector_AgingUnderFlatRates(t *testing.T) {
	pp := defaultProjector(t, func(p *domain.DemographicParams) {
		p.FertilityRate = domain.RateTable{2023: 0.73}
		p.NetMigration = domain.RateTable{2023: 0}
	})

	tables, err := pp.Trajectory(context.Background(), defaultSeed(t), 2023, 2093)
	require.NoError(t, err)
	require.Len(t, tables, 71)

	ratios := make([]float64, len(tables))
	for i, table := range tables {
		ind, err := pp.Indicators(table)
		require.NoError(t, err)
		ratios[i] = ind.ElderlyDependency
	}

	assert.InDelta(t, 26.84, ratios[0], 0.05)
	for i := 1; i <= 60; i++ {
		assert.Greater(t, ratios[i], ratios[i-1], "dependency ratio should rise in %d", 2023+i)
	}
	assert.Greater(t, ratios[len(ratios)-1], 5*ratios[0])
}

func TestPopulationProjector_MigrationClampedAtZero(t *testing.T) {
	pp := defaultProjector(t, func(p *domain.DemographicParams) {
		p.NetMigration = domain.RateTable{2023: -1e12}
	})

	next, err := pp.Step(defaultSeed(t), 2024)
	require.NoError(t, err)

	for _, c := range next[1:] {
		assert.Zero(t, c.Total)
	}
	assert.Greater(t, next[0].Total, 0.0, "newborns are not scaled by migration")
}

func TestPopulationProjector_MigrationScalesAgedCohorts(t *testing.T) {
	noMigration := defaultProjector(t, func(p *domain.DemographicParams) {
		p.NetMigration = domain.RateTable{2023: 0}
	})
	withMigration := defaultProjector(t, func(p *domain.DemographicParams) {
		p.NetMigration = domain.RateTable{2023: 100_000}
	})
	seed := defaultSeed(t)

	base, err := noMigration.Step(seed, 2024)
	require.NoError(t, err)
	migrated, err := withMigration.Step(seed, 2024)
	require.NoError(t, err)

	ratio := 1 + 100_000/seed.Total()
	assert.InDelta(t, base[40].Total*ratio, migrated[40].Total, 1e-6)
	assert.InDelta(t, base[0].Total, migrated[0].Total, 1e-9)
}

func TestPopulationProjector_DegenerateInputs(t *testing.T) {
	pp := defaultProjector(t, nil)

	_, err := pp.Step(uniformTable(200, 0), 2024)
	assert.ErrorIs(t, err, ErrDegenerateInput)

	onlyChildren := uniformTable(200, 0)
	onlyChildren[5] = domain.Cohort{Age: 5, Male: 10, Female: 10, Total: 20}
	_, err = pp.Indicators(onlyChildren)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestPopulationProjector_Indicators(t *testing.T) {
	pp := defaultProjector(t, nil)

	ind, err := pp.Indicators(uniformTable(200, 100))
	require.NoError(t, err)

	assert.Equal(t, 20100.0, ind.TotalPopulation)
	assert.Equal(t, 4700.0, ind.WorkingAgePopulation)
	assert.Equal(t, 13600.0, ind.ElderlyPopulation)
	assert.InDelta(t, 13600.0/4700.0*100, ind.ElderlyDependency, 1e-9)
}

func TestNewPopulationProjector_SurvivalBandErrors(t *testing.T) {
	tests := []struct {
		name  string
		bands []domain.SurvivalBand
	}{
		{"none", nil},
		{"gap", []domain.SurvivalBand{
			{Ages: domain.AgeRange{Min: 0, Max: 10}, Survival: 0.99},
			{Ages: domain.AgeRange{Min: 12, Max: -1}, Survival: 0.99},
		}},
		{"overlap", []domain.SurvivalBand{
			{Ages: domain.AgeRange{Min: 0, Max: 50}, Survival: 0.99},
			{Ages: domain.AgeRange{Min: 40, Max: -1}, Survival: 0.98},
		}},
		{"out of range", []domain.SurvivalBand{
			{Ages: domain.AgeRange{Min: 0, Max: -1}, Survival: 1.5},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := config.DefaultConfiguration().Demographic
			params.SurvivalBands = tt.bands
			_, err := NewPopulationProjector(params)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestPopulationProjector_SurvivalAt(t *testing.T) {
	pp := defaultProjector(t, nil)

	assert.Equal(t, 0.995, pp.SurvivalAt(0))
	assert.Equal(t, 0.999, pp.SurvivalAt(39))
	assert.Equal(t, 0.995, pp.SurvivalAt(40))
	assert.Equal(t, 0.98, pp.SurvivalAt(89))
	assert.Equal(t, 0.90, pp.SurvivalAt(150))
	assert.Zero(t, pp.SurvivalAt(201))
}

func TestBuildSeedPopulation_Groups(t *testing.T) {
	seed := defaultSeed(t)
	require.Len(t, seed, 201)

	under18 := seed.SumRange(domain.AgeRange{Min: 0, Max: 17})
	working := seed.SumRange(domain.AgeRange{Min: 18, Max: 64})
	elderly := seed.SumRange(domain.AgeRange{Min: 65, Max: -1})

	assert.InDelta(t, 7_050_000, under18, 1e-3)
	// weights sum to 45.6 against a fixed divisor of 45.1
	assert.InDelta(t, 35_010_000*45.6/45.1, working, 1e-3)
	assert.InDelta(t, 9_500_000, elderly, 1e-3)

	assert.Less(t, seed[0].Total, seed[17].Total, "linear weights ramp up")
	assert.Greater(t, seed[45].Total, seed[30].Total)
	assert.Greater(t, seed[70].Total, seed[80].Total)
	assert.Zero(t, seed[101].Total)
	assert.Equal(t, seed[30].Male, seed[30].Female)
}

func TestBuildSeedPopulation_ExplicitCohorts(t *testing.T) {
	seed := domain.PopulationSeed{
		Groups: config.DefaultConfiguration().Population.Groups,
		Cohorts: []domain.Cohort{
			{Age: 30, Male: 10, Female: 12},
			{Age: 70, Male: 5, Female: 7},
		},
	}

	table, err := BuildSeedPopulation(seed, 100)
	require.NoError(t, err)

	assert.Equal(t, 34.0, table.Total())
	assert.Equal(t, 22.0, table[30].Total)

	_, err = BuildSeedPopulation(domain.PopulationSeed{Cohorts: []domain.Cohort{{Age: 300, Male: 1}}}, 100)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = BuildSeedPopulation(domain.PopulationSeed{}, 100)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestBuildSeedPopulation_GroupAgeErrors(t *testing.T) {
	tests := []struct {
		name string
		ages domain.AgeRange
	}{
		{"inverted", domain.AgeRange{Min: 10, Max: 5}},
		{"negative min", domain.AgeRange{Min: -3, Max: 5}},
		{"open ended", domain.AgeRange{Min: 65, Max: -1}},
		{"beyond max age", domain.AgeRange{Min: 90, Max: 250}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfiguration()
			cfg.Population.Groups[0].Ages = tt.ages

			_, err := BuildSeedPopulation(cfg.Population, cfg.Demographic.MaxAge)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)

			_, err = NewProjectionEngine(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestPopulationProjector_Normalize(t *testing.T) {
	pp := defaultProjector(t, nil)

	out := pp.Normalize(domain.PopulationTable{
		{Age: 3, Male: 1, Female: 2},
		{Age: 3, Male: 1, Female: 0},
		{Age: 500, Male: 9, Female: 9},
	})

	require.Len(t, out, 201)
	assert.Equal(t, 4.0, out[3].Total)
	assert.Equal(t, 4.0, out.Total())
}
