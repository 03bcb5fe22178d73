package projection

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/domain"
)

func TestSimulate_ZeroAssumptionsHoldConstant(t *testing.T) {
	p := NewProjector(zerolog.Nop())

	path, err := p.Simulate(1000, Scenario{
		HorizonMonths:        24,
		MonthlyContribution:  0,
		ExpectedAnnualReturn: 0,
	}, 0)

	require.NoError(t, err)
	require.Len(t, path, 25)
	for _, mv := range path {
		assert.InDelta(t, 1000, mv.Value, 1e-9)
		assert.Zero(t, mv.DividendsAccrued)
	}
}

func TestSimulate_TwelvePercentAnnualOverTwelveMonths(t *testing.T) {
	p := NewProjector(zerolog.Nop())

	path, err := p.Simulate(1000, Scenario{
		HorizonMonths:        12,
		ExpectedAnnualReturn: 0.12,
	}, 0)

	require.NoError(t, err)
	// (1.12)^(1/12) applied twelve times must land on exactly 12% growth
	assert.InDelta(t, 1120, path[12].Value, 1e-6)
}

func TestSimulate_ContributionsAdd(t *testing.T) {
	p := NewProjector(zerolog.Nop())

	path, err := p.Simulate(0, Scenario{
		HorizonMonths:        3,
		MonthlyContribution:  100,
		ExpectedAnnualReturn: 0,
	}, 0)

	require.NoError(t, err)
	assert.InDelta(t, 300, path[3].Value, 1e-9)
}

func TestSimulate_ReinvestDominates(t *testing.T) {
	p := NewProjector(zerolog.Nop())

	base := Scenario{
		HorizonMonths:        60,
		MonthlyContribution:  500,
		ExpectedAnnualReturn: 0.10,
	}
	monthlyYield := 0.004

	withReinvest := base
	withReinvest.ReinvestDividends = true

	pathNo, err := p.Simulate(10000, base, monthlyYield)
	require.NoError(t, err)
	pathYes, err := p.Simulate(10000, withReinvest, monthlyYield)
	require.NoError(t, err)

	for i := range pathNo {
		assert.GreaterOrEqual(t, pathYes[i].Value, pathNo[i].Value,
			"reinvested path must dominate at month %d", i)
	}
}

func TestSimulate_DividendLedgerWithoutReinvestment(t *testing.T) {
	p := NewProjector(zerolog.Nop())

	// No growth, no contribution: each month pays 1000 * 0.01 into the ledger
	// and the portfolio value itself never changes.
	path, err := p.Simulate(1000, Scenario{
		HorizonMonths:        10,
		ExpectedAnnualReturn: 0,
	}, 0.01)

	require.NoError(t, err)
	assert.InDelta(t, 1000, path[10].Value, 1e-9)
	assert.InDelta(t, 100, path[10].DividendsAccrued, 1e-9)
}

func TestSimulate_Deterministic(t *testing.T) {
	p := NewProjector(zerolog.Nop())

	scenario := Scenario{HorizonMonths: 36, MonthlyContribution: 250, ExpectedAnnualReturn: 0.08, ReinvestDividends: true}

	a, err := p.Simulate(5000, scenario, 0.003)
	require.NoError(t, err)
	b, err := p.Simulate(5000, scenario, 0.003)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSimulate_InvalidScenarios(t *testing.T) {
	p := NewProjector(zerolog.Nop())

	cases := []struct {
		name     string
		value0   float64
		scenario Scenario
		yield    float64
	}{
		{"zero horizon", 1000, Scenario{HorizonMonths: 0}, 0},
		{"negative horizon", 1000, Scenario{HorizonMonths: -5}, 0},
		{"return at -100%", 1000, Scenario{HorizonMonths: 12, ExpectedAnnualReturn: -1}, 0},
		{"negative initial value", -1, Scenario{HorizonMonths: 12}, 0},
		{"negative dividend yield", 1000, Scenario{HorizonMonths: 12}, -0.01},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Simulate(tc.value0, tc.scenario, tc.yield)
			var invalidErr *domain.InvalidScenarioError
			require.ErrorAs(t, err, &invalidErr)
		})
	}
}
