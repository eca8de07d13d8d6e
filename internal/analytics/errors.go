// Package analytics implements the price time-series analytics and
// forecasting engine: trend classification, volatility, seasonality and
// anomaly detection, and multi-method short-horizon forecasting combined
// by an ensemble.
//
// Every function in this package is a pure, stateless computation over an
// in-memory series. The package performs no I/O and no logging; supplying
// observations and caching results are the caller's concern.
package analytics

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is the sentinel matched by errors.Is for any
// InsufficientDataError.
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError reports that an operation's minimum observation
// count was not met. Required and Actual are always populated so callers
// can report the precise shortfall.
type InsufficientDataError struct {
	Op       string
	Required int
	Actual   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d observations, have %d", e.Op, e.Required, e.Actual)
}

// Is makes errors.Is(err, ErrInsufficientData) match.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

func insufficientData(op string, required, actual int) error {
	return &InsufficientDataError{Op: op, Required: required, Actual: actual}
}
