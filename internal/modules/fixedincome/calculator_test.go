package fixedincome

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/domain"
)

func newTestCalculator() *Calculator {
	return NewCalculator(252, zerolog.Nop())
}

// addBusinessDays returns the date n weekdays after start.
func addBusinessDays(start time.Time, n int) time.Time {
	d := start
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			added++
		}
	}
	return d
}

func TestBusinessDaysBetween(t *testing.T) {
	// Mon 2024-01-01 to Fri 2024-01-05 spans four weekdays after the start.
	mon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fri := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 4, BusinessDaysBetween(mon, fri))

	// Crossing a weekend adds nothing.
	nextMon := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 5, BusinessDaysBetween(mon, nextMon))

	assert.Equal(t, 0, BusinessDaysBetween(mon, mon))
	assert.Equal(t, 0, BusinessDaysBetween(fri, mon))
}

func TestProjectFlat_FullYear(t *testing.T) {
	calc := newTestCalculator()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := addBusinessDays(start, 252)

	accrued, err := calc.ProjectFlat(10000, 0.10, 1.0, start, end)
	require.NoError(t, err)

	// 252 business days at 10% compounds to exactly one year of accrual.
	assert.InDelta(t, 11000.0, accrued, 1e-6)
}

func TestProjectFlat_PartialIndexation(t *testing.T) {
	calc := newTestCalculator()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := addBusinessDays(start, 252)

	// 110% of a 10% benchmark accrues at an 11% effective rate.
	accrued, err := calc.ProjectFlat(10000, 0.10, 1.10, start, end)
	require.NoError(t, err)
	assert.InDelta(t, 11100.0, accrued, 1e-6)
}

func TestProjectFlat_HalfYear(t *testing.T) {
	calc := newTestCalculator()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := addBusinessDays(start, 126)

	accrued, err := calc.ProjectFlat(10000, 0.10, 1.0, start, end)
	require.NoError(t, err)

	expected := 10000 * math.Pow(1.10, 0.5)
	assert.InDelta(t, expected, accrued, 1e-6)
}

func TestProjectFlat_InvalidInstrument(t *testing.T) {
	calc := newTestCalculator()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		principal float64
		rate      float64
		pct       float64
		end       time.Time
	}{
		{"negative principal", -1, 0.10, 1.0, start.AddDate(1, 0, 0)},
		{"end before start", 10000, 0.10, 1.0, start.AddDate(0, 0, -1)},
		{"end equals start", 10000, 0.10, 1.0, start},
		{"negative indexation", 10000, 0.10, -0.5, start.AddDate(1, 0, 0)},
		{"effective rate at -100%", 10000, -1.0, 1.0, start.AddDate(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.ProjectFlat(tt.principal, tt.rate, tt.pct, start, tt.end)
			require.Error(t, err)

			var invalid *domain.InvalidScenarioError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestProjectCurve_SinglePointMatchesFlat(t *testing.T) {
	calc := newTestCalculator()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := addBusinessDays(start, 180)

	curve, err := domain.NewRateCurve([]domain.RatePoint{{TenorDays: 30, Rate: 0.12}})
	require.NoError(t, err)

	fromCurve, err := calc.ProjectCurve(10000, curve, 1.0, start, end)
	require.NoError(t, err)

	flat, err := calc.ProjectFlat(10000, 0.12, 1.0, start, end)
	require.NoError(t, err)

	assert.Equal(t, flat, fromCurve)
}

func TestProjectCurve_Interpolation(t *testing.T) {
	curve, err := domain.NewRateCurve([]domain.RatePoint{
		{TenorDays: 100, Rate: 0.10},
		{TenorDays: 200, Rate: 0.20},
	})
	require.NoError(t, err)

	// Midpoint of the enclosing tenors gets the midpoint rate.
	assert.InDelta(t, 0.15, rateForTenor(curve, 150), 1e-12)
	assert.InDelta(t, 0.125, rateForTenor(curve, 125), 1e-12)

	// Exact knots return the knot rate.
	assert.Equal(t, 0.10, rateForTenor(curve, 100))
	assert.Equal(t, 0.20, rateForTenor(curve, 200))
}

func TestProjectCurve_FlatExtrapolation(t *testing.T) {
	curve, err := domain.NewRateCurve([]domain.RatePoint{
		{TenorDays: 100, Rate: 0.10},
		{TenorDays: 200, Rate: 0.20},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.10, rateForTenor(curve, 10))
	assert.Equal(t, 0.20, rateForTenor(curve, 500))
}

func TestProjectCurve_InvalidCurve(t *testing.T) {
	calc := newTestCalculator()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	_, err := calc.ProjectCurve(10000, domain.RateCurve{}, 1.0, start, end)
	require.Error(t, err)

	var malformed *domain.MalformedCurveError
	assert.ErrorAs(t, err, &malformed)
}

func TestMonthlySchedule(t *testing.T) {
	calc := newTestCalculator()

	schedule, err := calc.MonthlySchedule(1000, 0.12, 1.0, 12)
	require.NoError(t, err)
	require.Len(t, schedule, 13)

	assert.Equal(t, 0, schedule[0].Month)
	assert.Equal(t, 1000.0, schedule[0].Value)

	// Twelve compounding months reconstruct the annual rate.
	assert.InDelta(t, 1120.0, schedule[12].Value, 1e-6)

	// Values are strictly increasing under a positive rate.
	for i := 1; i < len(schedule); i++ {
		assert.Greater(t, schedule[i].Value, schedule[i-1].Value)
		assert.Equal(t, i, schedule[i].Month)
	}
}

func TestMonthlySchedule_PartialIndexation(t *testing.T) {
	calc := newTestCalculator()

	// 50% of a 12% benchmark compounds to 6% over a year.
	schedule, err := calc.MonthlySchedule(1000, 0.12, 0.5, 12)
	require.NoError(t, err)
	assert.InDelta(t, 1060.0, schedule[12].Value, 1e-6)
}

func TestMonthlySchedule_Invalid(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name      string
		principal float64
		rate      float64
		months    int
	}{
		{"zero months", 1000, 0.12, 0},
		{"negative months", 1000, 0.12, -3},
		{"negative principal", -1, 0.12, 12},
		{"effective rate at -100%", 1000, -1.0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.MonthlySchedule(tt.principal, tt.rate, 1.0, tt.months)
			require.Error(t, err)

			var invalid *domain.InvalidScenarioError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}
