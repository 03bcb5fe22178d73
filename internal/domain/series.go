package domain

import "time"

// PricePoint is a single (date, adjusted close) observation.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered sequence of adjusted-close prices for one ticker.
// Dates are strictly increasing with no duplicates; construction validates
// the invariant so downstream code never has to re-check ordering.
type PriceSeries struct {
	Ticker string
	Points []PricePoint
}

// NewPriceSeries validates and builds a price series.
func NewPriceSeries(ticker string, points []PricePoint) (PriceSeries, error) {
	for i, p := range points {
		if p.Close <= 0 {
			return PriceSeries{}, &MalformedSeriesError{Ticker: ticker, Reason: "non-positive price"}
		}
		if i > 0 && !points[i-1].Date.Before(p.Date) {
			return PriceSeries{}, &MalformedSeriesError{Ticker: ticker, Reason: "dates must be strictly increasing"}
		}
	}
	out := make([]PricePoint, len(points))
	copy(out, points)
	return PriceSeries{Ticker: ticker, Points: out}, nil
}

// Len returns the number of price points.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns the close prices in date order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// ReturnPoint is a single (date, periodic return) observation. The date is
// the date of the later of the two prices the return was derived from.
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// ReturnSeries is an ordered sequence of periodic returns derived from a
// PriceSeries. Its length is one less than the source price series.
type ReturnSeries struct {
	Ticker string
	Points []ReturnPoint
}

// Len returns the number of return points.
func (s ReturnSeries) Len() int { return len(s.Points) }

// Values returns the raw return values in date order.
func (s ReturnSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Return
	}
	return out
}

// RatePoint is a single (tenor in days, annualized rate) point on a forward
// rate curve. Rates are decimal fractions (0.105 = 10.5% a.a.).
type RatePoint struct {
	TenorDays int     `json:"tenor_days"`
	Rate      float64 `json:"rate"`
}

// RateCurve is a term structure of annualized benchmark rates by tenor.
// Tenors are strictly increasing; the curve has at least one point.
type RateCurve struct {
	Points []RatePoint
}

// NewRateCurve validates and builds a rate curve.
func NewRateCurve(points []RatePoint) (RateCurve, error) {
	if len(points) == 0 {
		return RateCurve{}, &MalformedCurveError{Reason: "curve must have at least one point"}
	}
	for i, p := range points {
		if p.TenorDays <= 0 {
			return RateCurve{}, &MalformedCurveError{Reason: "tenors must be positive"}
		}
		if i > 0 && points[i-1].TenorDays >= p.TenorDays {
			return RateCurve{}, &MalformedCurveError{Reason: "tenors must be strictly increasing"}
		}
	}
	out := make([]RatePoint, len(points))
	copy(out, points)
	return RateCurve{Points: out}, nil
}

// Validate re-checks the curve invariants on an already-constructed value.
// Useful when a curve arrives over a boundary that bypassed NewRateCurve.
func (c RateCurve) Validate() error {
	_, err := NewRateCurve(c.Points)
	return err
}
