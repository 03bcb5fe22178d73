package montecarlo

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/domain"
)

func history(values ...float64) domain.ReturnSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.ReturnPoint, len(values))
	for i, v := range values {
		points[i] = domain.ReturnPoint{Date: base.AddDate(0, 0, i), Return: v}
	}
	return domain.ReturnSeries{Points: points}
}

func seed(v uint64) *uint64 { return &v }

func TestSimulate_SeededRunsAreBitIdentical(t *testing.T) {
	s := NewSimulator(zerolog.Nop())

	h := history(0.01, -0.02, 0.03, 0.005, -0.01, 0.02)
	cfg := Config{HorizonMonths: 24, NumPaths: 500, Seed: seed(42)}

	a, err := s.Simulate(h, 10000, cfg)
	require.NoError(t, err)
	b, err := s.Simulate(h, 10000, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.TerminalValues, b.TerminalValues)
	assert.Equal(t, a.Percentiles, b.Percentiles)
}

func TestSimulate_WorkerCountDoesNotChangeSeededResults(t *testing.T) {
	s := NewSimulator(zerolog.Nop())

	h := history(0.01, -0.02, 0.03, 0.005, -0.01)
	sequential := Config{HorizonMonths: 12, NumPaths: 200, Seed: seed(7), Workers: 1}
	parallel := Config{HorizonMonths: 12, NumPaths: 200, Seed: seed(7), Workers: 8}

	a, err := s.Simulate(h, 1000, sequential)
	require.NoError(t, err)
	b, err := s.Simulate(h, 1000, parallel)
	require.NoError(t, err)

	assert.Equal(t, a.TerminalValues, b.TerminalValues)
}

func TestSimulate_DifferentSeedsDiffer(t *testing.T) {
	s := NewSimulator(zerolog.Nop())

	h := history(0.01, -0.02, 0.03, 0.005, -0.01)
	a, err := s.Simulate(h, 10000, Config{HorizonMonths: 12, NumPaths: 100, Seed: seed(1)})
	require.NoError(t, err)
	b, err := s.Simulate(h, 10000, Config{HorizonMonths: 12, NumPaths: 100, Seed: seed(2)})
	require.NoError(t, err)

	assert.NotEqual(t, a.TerminalValues, b.TerminalValues)
}

func TestSimulate_PercentilesAreOrdered(t *testing.T) {
	s := NewSimulator(zerolog.Nop())

	h := history(0.02, -0.03, 0.04, 0.01, -0.02, 0.03, 0.005)
	result, err := s.Simulate(h, 10000, Config{HorizonMonths: 36, NumPaths: 1000, Seed: seed(99)})
	require.NoError(t, err)

	p := result.Percentiles
	assert.LessOrEqual(t, p.P5, p.P25)
	assert.LessOrEqual(t, p.P25, p.P50)
	assert.LessOrEqual(t, p.P50, p.P75)
	assert.LessOrEqual(t, p.P75, p.P95)
}

func TestSimulate_ZeroVolatilityHistoryIsDeterministic(t *testing.T) {
	s := NewSimulator(zerolog.Nop())

	// Constant 1% periodic returns: sigma is zero, so every path compounds
	// exactly mu each step.
	h := history(0.01, 0.01, 0.01, 0.01)
	result, err := s.Simulate(h, 1000, Config{HorizonMonths: 12, NumPaths: 50})
	require.NoError(t, err)

	expected := 1000 * math.Pow(1.01, 12)
	for _, terminal := range result.TerminalValues {
		assert.InDelta(t, expected, terminal, 1e-6)
	}
	assert.InDelta(t, expected, result.Percentiles.P50, 1e-6)
}

func TestSimulate_ContributionsAddedBeforeCompounding(t *testing.T) {
	s := NewSimulator(zerolog.Nop())

	// Zero-return constant history: one month with a 100 contribution
	// compounds (0 + 100) * 1.0 = 100.
	h := history(0, 0, 0)
	result, err := s.Simulate(h, 0, Config{HorizonMonths: 1, NumPaths: 10, MonthlyContribution: 100})
	require.NoError(t, err)

	for _, terminal := range result.TerminalValues {
		assert.InDelta(t, 100, terminal, 1e-9)
	}
}

func TestSimulate_DividendLedger(t *testing.T) {
	s := NewSimulator(zerolog.Nop())

	h := history(0, 0, 0)
	result, err := s.Simulate(h, 1000, Config{
		HorizonMonths:        2,
		NumPaths:             5,
		MonthlyDividendYield: 0.01,
	})
	require.NoError(t, err)

	// Without reinvestment the value stays 1000 and pays 10 each month.
	assert.InDelta(t, 20, result.AvgTotalDividends, 1e-9)
}

func TestSimulate_InsufficientHistory(t *testing.T) {
	s := NewSimulator(zerolog.Nop())

	_, err := s.Simulate(history(0.01), 1000, Config{HorizonMonths: 12, NumPaths: 100})

	var insufficientErr *domain.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
}

func TestSimulate_InvalidConfig(t *testing.T) {
	s := NewSimulator(zerolog.Nop())
	h := history(0.01, -0.01, 0.02)

	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero paths", Config{HorizonMonths: 12, NumPaths: 0}},
		{"zero horizon", Config{HorizonMonths: 0, NumPaths: 100}},
		{"negative dividend yield", Config{HorizonMonths: 12, NumPaths: 100, MonthlyDividendYield: -0.1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Simulate(h, 1000, tc.cfg)
			var invalidErr *domain.InvalidScenarioError
			require.ErrorAs(t, err, &invalidErr)
		})
	}
}
