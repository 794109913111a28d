package calculation

import (
	"context"
	"fmt"

	"github.com/npsmodel/projection/internal/domain"
)

// PopulationProjector runs the cohort-component recursion.
type PopulationProjector struct {
	fertility      *RateCurve
	migration      *RateCurve
	survival       []float64 // index == age
	fertileAges    domain.AgeRange
	maleBirthShare float64
	workingAges    domain.AgeRange
	elderlyAge     int
	maxAge         int
}

// NewPopulationProjector validates the demographic parameters.
func NewPopulationProjector(params domain.DemographicParams) (*PopulationProjector, error) {
	if params.MaxAge <= 0 {
		return nil, fmt.Errorf("%w: max age must be positive", ErrInvalidConfiguration)
	}
	fertility, err := NewRateCurve("fertility_rate", params.FertilityRate)
	if err != nil {
		return nil, err
	}
	migration, err := NewRateCurve("net_migration", params.NetMigration)
	if err != nil {
		return nil, err
	}
	survival, err := survivalByAge(params.SurvivalBands, params.MaxAge)
	if err != nil {
		return nil, err
	}
	if params.FertileAges.Max < params.FertileAges.Min {
		return nil, fmt.Errorf("%w: fertile ages must be a closed range", ErrInvalidConfiguration)
	}
	if params.MaleBirthShare < 0 || params.MaleBirthShare > 1 {
		return nil, fmt.Errorf("%w: male birth share must be between 0 and 1", ErrInvalidConfiguration)
	}
	return &PopulationProjector{
		fertility:      fertility,
		migration:      migration,
		survival:       survival,
		fertileAges:    params.FertileAges,
		maleBirthShare: params.MaleBirthShare,
		workingAges:    params.WorkingAges,
		elderlyAge:     params.ElderlyAge,
		maxAge:         params.MaxAge,
	}, nil
}

// survivalByAge expands the band table into a per-age lookup.
// Every age must be covered by exactly one band.
func survivalByAge(bands []domain.SurvivalBand, maxAge int) ([]float64, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: survival bands are required", ErrInvalidConfiguration)
	}
	for i := range bands {
		if bands[i].Survival < 0 || bands[i].Survival > 1 {
			return nil, fmt.Errorf("%w: survival for ages %s must be between 0 and 1", ErrInvalidConfiguration, bands[i].Ages)
		}
		for j := i + 1; j < len(bands); j++ {
			if bands[i].Ages.Overlaps(bands[j].Ages) {
				return nil, fmt.Errorf("%w: survival bands %s and %s overlap", ErrInvalidConfiguration, bands[i].Ages, bands[j].Ages)
			}
		}
	}
	out := make([]float64, maxAge+1)
	for age := 0; age <= maxAge; age++ {
		found := false
		for _, b := range bands {
			if b.Ages.Contains(age) {
				out[age] = b.Survival
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no survival band covers age %d", ErrInvalidConfiguration, age)
		}
	}
	return out, nil
}

// SurvivalAt returns the survival multiplier applied to a cohort reaching age.
func (pp *PopulationProjector) SurvivalAt(age int) float64 {
	if age < 0 || age >= len(pp.survival) {
		return 0
	}
	return pp.survival[age]
}

// Step projects the table one year forward. prev is not modified.
func (pp *PopulationProjector) Step(prev domain.PopulationTable, year int) (domain.PopulationTable, error) {
	prevTotal := prev.Total()
	if prevTotal <= 0 {
		return nil, fmt.Errorf("year %d: previous population is empty: %w", year, ErrDegenerateInput)
	}

	next := make(domain.PopulationTable, pp.maxAge+1)

	// age and survive; the oldest cohort leaves the table
	var fertileFemales float64
	for _, c := range prev {
		age := c.Age + 1
		if age > pp.maxAge {
			continue
		}
		s := pp.survival[age]
		next[age] = domain.Cohort{Age: age, Male: c.Male * s, Female: c.Female * s}
		if pp.fertileAges.Contains(age) {
			fertileFemales += next[age].Female
		}
	}

	width := float64(pp.fertileAges.Max - pp.fertileAges.Min + 1)
	births := fertileFemales * pp.fertility.ValueAt(year) / width

	// migration scales the aged cohorts only
	ratio := 1 + pp.migration.ValueAt(year)/prevTotal
	if ratio < 0 {
		ratio = 0
	}
	for age := 1; age <= pp.maxAge; age++ {
		c := &next[age]
		c.Age = age
		c.Male *= ratio
		c.Female *= ratio
		c.Total = c.Male + c.Female
	}

	male := births * pp.maleBirthShare
	female := births - male
	next[0] = domain.Cohort{Age: 0, Male: male, Female: female, Total: male + female}
	return next, nil
}

// Trajectory returns the tables for start..end, seeded with seed at start.
func (pp *PopulationProjector) Trajectory(ctx context.Context, seed domain.PopulationTable, start, end int) ([]domain.PopulationTable, error) {
	if end < start {
		return nil, fmt.Errorf("%w: end year %d before start year %d", ErrInvalidConfiguration, end, start)
	}
	out := make([]domain.PopulationTable, 0, end-start+1)
	current := pp.Normalize(seed)
	out = append(out, current)
	for year := start + 1; year <= end; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := pp.Step(current, year)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		current = next
	}
	return out, nil
}

// Normalize copies a table into one cohort per age 0..max age.
// Entries above the cutoff are dropped.
func (pp *PopulationProjector) Normalize(table domain.PopulationTable) domain.PopulationTable {
	out := make(domain.PopulationTable, pp.maxAge+1)
	for age := range out {
		out[age].Age = age
	}
	for _, c := range table {
		if c.Age < 0 || c.Age > pp.maxAge {
			continue
		}
		dst := &out[c.Age]
		dst.Male += c.Male
		dst.Female += c.Female
		dst.Total = dst.Male + dst.Female
	}
	return out
}

// Indicators aggregates a table. A zero working-age population is degenerate.
func (pp *PopulationProjector) Indicators(table domain.PopulationTable) (domain.PopulationIndicators, error) {
	elderly := domain.AgeRange{Min: pp.elderlyAge, Max: -1}
	ind := domain.PopulationIndicators{
		TotalPopulation:      table.Total(),
		WorkingAgePopulation: table.SumRange(pp.workingAges),
		ElderlyPopulation:    table.SumRange(elderly),
	}
	if ind.WorkingAgePopulation == 0 {
		return ind, fmt.Errorf("working-age population is zero: %w", ErrDegenerateInput)
	}
	ind.ElderlyDependency = ind.ElderlyPopulation / ind.WorkingAgePopulation * 100
	return ind, nil
}

// BuildSeedPopulation expands the base-year seed into a per-age table.
func BuildSeedPopulation(seed domain.PopulationSeed, maxAge int) (domain.PopulationTable, error) {
	table := make(domain.PopulationTable, maxAge+1)
	for age := range table {
		table[age].Age = age
	}

	if len(seed.Cohorts) > 0 {
		for _, c := range seed.Cohorts {
			if c.Age < 0 || c.Age > maxAge {
				return nil, fmt.Errorf("%w: seed cohort age %d outside 0..%d", ErrInvalidConfiguration, c.Age, maxAge)
			}
			if c.Male < 0 || c.Female < 0 {
				return nil, fmt.Errorf("%w: seed cohort age %d has a negative count", ErrInvalidConfiguration, c.Age)
			}
			table[c.Age].Male += c.Male
			table[c.Age].Female += c.Female
			table[c.Age].Total = table[c.Age].Male + table[c.Age].Female
		}
		return table, nil
	}

	if len(seed.Groups) == 0 {
		return nil, fmt.Errorf("%w: population seed needs cohorts or groups", ErrInvalidConfiguration)
	}
	if seed.MaleShare < 0 || seed.MaleShare > 1 {
		return nil, fmt.Errorf("%w: male share must be between 0 and 1", ErrInvalidConfiguration)
	}
	for _, g := range seed.Groups {
		if g.Ages.Max < 0 || g.Ages.Max > maxAge {
			return nil, fmt.Errorf("%w: seed group %q needs a closed age range within 0..%d", ErrInvalidConfiguration, g.Name, maxAge)
		}
		if g.Ages.Min < 0 || g.Ages.Min > g.Ages.Max {
			return nil, fmt.Errorf("%w: seed group %q has invalid ages %d-%d", ErrInvalidConfiguration, g.Name, g.Ages.Min, g.Ages.Max)
		}
		weights := make([]float64, 0, g.Ages.Max-g.Ages.Min+1)
		var sum float64
		for age := g.Ages.Min; age <= g.Ages.Max; age++ {
			w := groupWeight(g, age)
			weights = append(weights, w)
			sum += w
		}
		divisor := g.Divisor
		if divisor == 0 {
			divisor = sum
		}
		if divisor <= 0 {
			return nil, fmt.Errorf("%w: seed group %q has no weight", ErrInvalidConfiguration, g.Name)
		}
		for i, w := range weights {
			age := g.Ages.Min + i
			pop := g.Total * w / divisor
			table[age].Male += pop * seed.MaleShare
			table[age].Female += pop * (1 - seed.MaleShare)
			table[age].Total = table[age].Male + table[age].Female
		}
	}
	return table, nil
}

func groupWeight(g domain.SeedGroup, age int) float64 {
	if g.Linear != nil {
		span := g.Ages.Max - g.Ages.Min
		if span == 0 {
			return g.Linear.From
		}
		return g.Linear.From + float64(age-g.Ages.Min)/float64(span)*(g.Linear.To-g.Linear.From)
	}
	for _, b := range g.Bands {
		if b.Ages.Contains(age) {
			return b.Weight
		}
	}
	if len(g.Bands) == 0 {
		return 1
	}
	return 0
}
