package domain

import "fmt"

// InsufficientDataError reports that a computation received fewer data points
// than the statistic it computes requires. The caller can retry with a longer
// history window.
type InsufficientDataError struct {
	Op   string // operation that failed, e.g. "returns.Build"
	Need int    // minimum number of points required
	Got  int    // number of points received
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need at least %d points, got %d", e.Op, e.Need, e.Got)
}

// DegenerateInputError reports a mathematically undefined result, such as a
// Beta against a zero-variance benchmark or a P/L percentage over a zero cost
// basis. The input is well-formed but the requested quantity does not exist.
type DegenerateInputError struct {
	Op     string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input: %s", e.Op, e.Reason)
}

// InvalidScenarioError reports caller-supplied configuration that violates a
// precondition (non-positive horizon, negative principal, etc).
type InvalidScenarioError struct {
	Field  string
	Reason string
}

func (e *InvalidScenarioError) Error() string {
	return fmt.Sprintf("invalid scenario: %s: %s", e.Field, e.Reason)
}

// MalformedCurveError reports a rate curve that violates its invariants
// (empty, or tenors not strictly increasing).
type MalformedCurveError struct {
	Reason string
}

func (e *MalformedCurveError) Error() string {
	return fmt.Sprintf("malformed rate curve: %s", e.Reason)
}

// MalformedSeriesError reports a price or return series that violates its
// invariants (duplicate or out-of-order dates, non-positive prices).
type MalformedSeriesError struct {
	Ticker string
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("malformed series for %s: %s", e.Ticker, e.Reason)
	}
	return fmt.Sprintf("malformed series: %s", e.Reason)
}
