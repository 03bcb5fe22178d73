// Package projection simulates month-by-month portfolio growth under fixed
// contribution and expected-return assumptions, with and without dividend
// reinvestment. The simulation is deterministic: the same inputs always
// produce the identical sequence.
package projection

import (
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/pkg/formulas"
)

// Scenario is the configuration for a deterministic projection.
type Scenario struct {
	HorizonMonths        int     `json:"horizon_months"`
	MonthlyContribution  float64 `json:"monthly_contribution"`
	ExpectedAnnualReturn float64 `json:"expected_annual_return"` // decimal, e.g. 0.12
	ReinvestDividends    bool    `json:"reinvest_dividends"`
}

// Validate checks the scenario preconditions.
func (s Scenario) Validate() error {
	if s.HorizonMonths <= 0 {
		return &domain.InvalidScenarioError{Field: "horizon_months", Reason: "must be positive"}
	}
	if s.ExpectedAnnualReturn <= -1 {
		return &domain.InvalidScenarioError{Field: "expected_annual_return", Reason: "must be greater than -100%"}
	}
	return nil
}

// MonthValue is one step of the projected path. DividendsAccrued is the
// cumulative dividend cash received up to this month; when the scenario
// reinvests, the same cash is also compounded into Value.
type MonthValue struct {
	Month            int     `json:"month"`
	Value            float64 `json:"value"`
	DividendsAccrued float64 `json:"dividends_accrued"`
}

// Projector runs deterministic wealth projections.
type Projector struct {
	log zerolog.Logger
}

// NewProjector creates a new deterministic projector.
func NewProjector(log zerolog.Logger) *Projector {
	return &Projector{
		log: log.With().Str("component", "projection").Logger(),
	}
}

// Simulate evolves the portfolio value month by month. The expected annual
// return is converted with the compounding convention (1+r)^(1/12)-1, never a
// simple division by 12. monthlyDividendYield is already a monthly rate.
//
// Without reinvestment, dividends accumulate in a separate non-compounding
// cash ledger; with reinvestment they compound into the portfolio value
// before the monthly contribution is added.
func (p *Projector) Simulate(value0 float64, scenario Scenario, monthlyDividendYield float64) ([]MonthValue, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if value0 < 0 {
		return nil, &domain.InvalidScenarioError{Field: "portfolio_value", Reason: "must be >= 0"}
	}
	if monthlyDividendYield < 0 {
		return nil, &domain.InvalidScenarioError{Field: "monthly_dividend_yield", Reason: "must be >= 0"}
	}

	monthlyReturn := formulas.MonthlyRate(scenario.ExpectedAnnualReturn)

	path := make([]MonthValue, scenario.HorizonMonths+1)
	path[0] = MonthValue{Month: 0, Value: value0}

	value := value0
	dividends := 0.0

	for month := 1; month <= scenario.HorizonMonths; month++ {
		grown := value * (1 + monthlyReturn)
		dividendsThisMonth := grown * monthlyDividendYield
		dividends += dividendsThisMonth

		if scenario.ReinvestDividends {
			grown += dividendsThisMonth
		}

		value = grown + scenario.MonthlyContribution
		path[month] = MonthValue{
			Month:            month,
			Value:            value,
			DividendsAccrued: dividends,
		}
	}

	p.log.Debug().
		Int("horizon_months", scenario.HorizonMonths).
		Bool("reinvest", scenario.ReinvestDividends).
		Float64("final_value", value).
		Msg("Simulated deterministic projection")

	return path, nil
}
