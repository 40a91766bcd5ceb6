package bonding_curve

import (
	"errors"
	"fmt"

	"github.com/dmitro3/fairlaunch-go/bonding_curve/math"
)

var (
	ErrInvalidCurveConfig  = errors.New("invalid curve config")
	ErrArithmeticOverflow  = math.ErrArithmeticOverflow
	ErrInsufficientReserve = errors.New("insufficient reserve")
	ErrStaleSnapshot       = errors.New("stale snapshot")

	ErrUnknownDirection = errors.New("unknown quote direction")
	ErrUnknownCurveKind = errors.New("unknown curve kind")
)

// InvalidCurveConfigError names the parameter that failed validation.
type InvalidCurveConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidCurveConfigError) Error() string {
	return fmt.Sprintf("invalid curve config: %s=%s: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidCurveConfigError) Unwrap() error {
	return ErrInvalidCurveConfig
}

func invalidConfig(field string, value any, reason string) error {
	return &InvalidCurveConfigError{Field: field, Value: fmt.Sprint(value), Reason: reason}
}

// QuoteError is returned by the quote functions. Err is one of the package sentinels.
type QuoteError struct {
	Op     string
	Detail string
	Err    error
}

func (e *QuoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Err)
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

func quoteError(op string, err error, format string, args ...any) error {
	var qe *QuoteError
	if errors.As(err, &qe) {
		return err
	}
	return &QuoteError{Op: op, Detail: fmt.Sprintf(format, args...), Err: err}
}
