package calculation

import (
	"fmt"

	"github.com/npsmodel/projection/internal/domain"
)

// trajectory holds everything that does not depend on investment returns.
// Once complete it is shared read-only between Monte Carlo paths.
type trajectory struct {
	horizon     domain.Horizon
	populations []domain.PopulationTable
	economic    []domain.EconomicSnapshot
	subscribers []domain.SubscriberSnapshot
	benefits    []domain.BenefitSnapshot
	demographic []domain.DemographicRecord
}

// trajectoryBuilder extends a trajectory one year at a time.
type trajectoryBuilder struct {
	e *ProjectionEngine
	t *trajectory
}

func (e *ProjectionEngine) newTrajectoryBuilder() *trajectoryBuilder {
	h := e.cfg.Horizon
	n := h.Years()
	return &trajectoryBuilder{
		e: e,
		t: &trajectory{
			horizon:     h,
			populations: make([]domain.PopulationTable, 0, n),
			economic:    e.macro.Trajectory(h.StartYear, h.EndYear),
			subscribers: make([]domain.SubscriberSnapshot, 0, n),
			benefits:    make([]domain.BenefitSnapshot, 0, n),
			demographic: make([]domain.DemographicRecord, 0, n),
		},
	}
}

// advance appends the next year. The first call places the seed table.
func (b *trajectoryBuilder) advance(year int) error {
	e := b.e
	i := len(b.t.populations)
	if year != b.t.horizon.StartYear+i {
		return fmt.Errorf("trajectory expects year %d, got %d", b.t.horizon.StartYear+i, year)
	}

	var table domain.PopulationTable
	if i == 0 {
		table = e.seed
	} else {
		next, err := e.population.Step(b.t.populations[i-1], year)
		if err != nil {
			return err
		}
		table = next
	}

	ind, err := e.population.Indicators(table)
	if err != nil {
		return fmt.Errorf("year %d: %w", year, err)
	}
	inflation := b.t.economic[i].CumulativeInflation
	subs := e.subscribers.estimate(year, table, inflation)
	ben, err := e.benefits.estimate(year, table, subs, inflation)
	if err != nil {
		return err
	}

	b.t.populations = append(b.t.populations, table)
	b.t.subscribers = append(b.t.subscribers, subs)
	b.t.benefits = append(b.t.benefits, ben)
	b.t.demographic = append(b.t.demographic, domain.DemographicRecord{
		Year:                 year,
		TotalPopulation:      ind.TotalPopulation,
		WorkingAgePopulation: ind.WorkingAgePopulation,
		ElderlyPopulation:    ind.ElderlyPopulation,
		ElderlyDependency:    ind.ElderlyDependency,
		TotalSubscribers:     subs.TotalSubscribers,
		TotalIncomeNominal:   subs.TotalIncomeNominal,
		TotalIncomeReal:      subs.TotalIncomeReal,
	})
	return nil
}

// ledgerInput assembles the ledger inputs for year index i.
func (t *trajectory) ledgerInput(i int, nominalReturn float64) LedgerInput {
	econ := t.economic[i]
	return LedgerInput{
		Year:                econ.Year,
		IncomeReal:          t.subscribers[i].TotalIncomeReal,
		BenefitsReal:        t.benefits[i].TotalBenefitsReal,
		NominalReturn:       nominalReturn,
		RealReturn:          RealReturn(nominalReturn, econ.InflationRate),
		CumulativeInflation: econ.CumulativeInflation,
		NominalGDP:          econ.NominalGDP,
		RealGDP:             econ.RealGDP,
	}
}

// demographicCopy returns a copy callers may keep.
func (t *trajectory) demographicCopy() []domain.DemographicRecord {
	return append([]domain.DemographicRecord(nil), t.demographic...)
}
