// Package formulas provides the shared numeric primitives used by the
// analytics engines: sample statistics, annualization, return conversion,
// drawdown and percentiles.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Covariance calculates the sample covariance between two equal-length datasets
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Correlation calculates the Pearson correlation coefficient between two datasets
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// CalculateReturns converts prices to periodic returns.
// Returns[i] = Price[i+1]/Price[i] - 1
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = prices[i]/prices[i-1] - 1
		}
	}

	return returns
}

// AnnualizedMean scales a periodic mean return by the number of periods per
// year. The period count is always explicit, never inferred from data spacing.
func AnnualizedMean(periodicMean float64, periodsPerYear int) float64 {
	return periodicMean * float64(periodsPerYear)
}

// AnnualizedStdDev scales a periodic standard deviation by the square root of
// the number of periods per year.
func AnnualizedStdDev(periodicStdDev float64, periodsPerYear int) float64 {
	return periodicStdDev * math.Sqrt(float64(periodsPerYear))
}

// AnnualizedVolatility calculates annualized volatility from periodic returns.
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}
	return AnnualizedStdDev(StdDev(returns), periodsPerYear)
}

// CompoundAnnualReturn compounds a periodic mean return to an annual rate:
// (1+mean)^periodsPerYear - 1.
func CompoundAnnualReturn(periodicMean float64, periodsPerYear int) float64 {
	return math.Pow(1+periodicMean, float64(periodsPerYear)) - 1
}

// MonthlyRate converts an annual rate to its monthly compounding equivalent:
// (1+annual)^(1/12) - 1. The inputs can be negative as long as 1+annual > 0.
func MonthlyRate(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12.0) - 1
}

// CumulativeValues compounds a return series onto an initial value, returning
// the value level after each period. The output has len(returns) entries.
func CumulativeValues(initial float64, returns []float64) []float64 {
	out := make([]float64, len(returns))
	value := initial
	for i, r := range returns {
		value *= 1 + r
		out[i] = value
	}
	return out
}

// MaxDrawdown computes the maximum peak-to-trough decline over a value-level
// series, as a positive fraction of the peak. Returns 0 for monotonically
// rising or empty series.
func MaxDrawdown(values []float64) float64 {
	maxDD := 0.0
	peak := math.Inf(-1)
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// Percentile computes the p-th percentile (0-100) of data using linear
// interpolation between order statistics. The input is not modified.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	pos := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
