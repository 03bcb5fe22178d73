// Package fixedincome computes accrued and projected yield for
// benchmark-indexed instruments (e.g. a CDB paying a percentage of the CDI
// rate), in a flat-rate mode and a forward-curve mode.
package fixedincome

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/pkg/formulas"
)

// Calculator computes fixed income accruals. The accrual convention is
// business-day compounding over businessDaysPerYear (252 is the benchmark
// market convention).
type Calculator struct {
	businessDaysPerYear int
	log                 zerolog.Logger
}

// NewCalculator creates a new fixed income calculator. A non-positive
// businessDaysPerYear falls back to the 252-day convention.
func NewCalculator(businessDaysPerYear int, log zerolog.Logger) *Calculator {
	if businessDaysPerYear <= 0 {
		businessDaysPerYear = 252
	}
	return &Calculator{
		businessDaysPerYear: businessDaysPerYear,
		log:                 log.With().Str("component", "fixedincome").Logger(),
	}
}

// ProjectFlat accrues the principal at a flat annual benchmark rate:
// principal * (1 + indexedRatePct*annualRate)^(businessDays/252).
func (c *Calculator) ProjectFlat(principal, annualRate, indexedRatePct float64, start, end time.Time) (float64, error) {
	instrument := domain.FixedIncomeInstrument{
		Principal:      principal,
		IndexedRatePct: indexedRatePct,
		StartDate:      start,
		EndDate:        end,
	}
	if err := instrument.Validate(); err != nil {
		return 0, err
	}

	effective := indexedRatePct * annualRate
	if 1+effective <= 0 {
		return 0, &domain.InvalidScenarioError{
			Field:  "annual_rate",
			Reason: "effective rate must be greater than -100%",
		}
	}

	days := BusinessDaysBetween(start, end)
	accrued := principal * math.Pow(1+effective, float64(days)/float64(c.businessDaysPerYear))

	c.log.Debug().
		Float64("principal", principal).
		Float64("effective_rate", effective).
		Int("business_days", days).
		Float64("accrued", accrued).
		Msg("Projected flat fixed income accrual")

	return accrued, nil
}

// ProjectCurve accrues the principal using the forward rate interpolated
// from the curve at the instrument's tenor. Tenors outside the curve's range
// use the nearest boundary point (flat extrapolation) rather than failing.
func (c *Calculator) ProjectCurve(principal float64, curve domain.RateCurve, indexedRatePct float64, start, end time.Time) (float64, error) {
	if err := curve.Validate(); err != nil {
		return 0, err
	}
	instrument := domain.FixedIncomeInstrument{
		Principal:      principal,
		IndexedRatePct: indexedRatePct,
		StartDate:      start,
		EndDate:        end,
	}
	if err := instrument.Validate(); err != nil {
		return 0, err
	}

	tenorDays := int(end.Sub(start).Hours() / 24)
	rate := rateForTenor(curve, tenorDays)

	return c.ProjectFlat(principal, rate, indexedRatePct, start, end)
}

// SchedulePoint is one month of a fixed income value schedule.
type SchedulePoint struct {
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// MonthlySchedule projects the month-by-month value of a principal accruing
// at indexedRatePct of a flat annual benchmark rate, using the compounding
// monthly conversion (1+effective)^(1/12)-1.
func (c *Calculator) MonthlySchedule(principal, annualRate, indexedRatePct float64, months int) ([]SchedulePoint, error) {
	if months < 1 {
		return nil, &domain.InvalidScenarioError{Field: "months", Reason: "must be >= 1"}
	}
	if principal < 0 {
		return nil, &domain.InvalidScenarioError{Field: "principal", Reason: "must be >= 0"}
	}

	effective := indexedRatePct * annualRate
	if 1+effective <= 0 {
		return nil, &domain.InvalidScenarioError{
			Field:  "annual_rate",
			Reason: "effective rate must be greater than -100%",
		}
	}

	monthlyRate := formulas.MonthlyRate(effective)

	schedule := make([]SchedulePoint, months+1)
	schedule[0] = SchedulePoint{Month: 0, Value: principal}
	value := principal
	for month := 1; month <= months; month++ {
		value *= 1 + monthlyRate
		schedule[month] = SchedulePoint{Month: month, Value: value}
	}

	return schedule, nil
}

// rateForTenor linearly interpolates the curve between the two enclosing
// tenor points, with flat extrapolation beyond the boundaries.
func rateForTenor(curve domain.RateCurve, tenorDays int) float64 {
	points := curve.Points

	if tenorDays <= points[0].TenorDays {
		return points[0].Rate
	}
	last := points[len(points)-1]
	if tenorDays >= last.TenorDays {
		return last.Rate
	}

	for i := 1; i < len(points); i++ {
		if tenorDays <= points[i].TenorDays {
			lo, hi := points[i-1], points[i]
			frac := float64(tenorDays-lo.TenorDays) / float64(hi.TenorDays-lo.TenorDays)
			return lo.Rate + frac*(hi.Rate-lo.Rate)
		}
	}

	return last.Rate
}

// BusinessDaysBetween counts weekdays after start up to and including end.
// Weekends are excluded; market holidays are not modeled.
func BusinessDaysBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}

	days := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			// skip
		default:
			days++
		}
	}
	return days
}
