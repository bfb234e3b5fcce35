// Package bounds holds the range checks shared by the pitch model, the tempo
// controller and the humanization settings.
package bounds

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// InvalidRangeError reports a value that falls outside its allowed range.
// It is always raised synchronously, before any scheduling happens.
type InvalidRangeError struct {
	Field string
	Value any
	Min   any
	Max   any
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s %v out of range [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

// Check returns an *InvalidRangeError when v is outside [lo, hi].
func Check[T constraints.Integer | constraints.Float](field string, v, lo, hi T) error {
	if v < lo || v > hi {
		return &InvalidRangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// Clamp pins v into [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
