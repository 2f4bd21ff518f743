// Package safe provides range-checked conversions between Go ints and unsigned
// storage columns.
package safe

import (
	"fmt"
	"math"
)

// Uint64 converts a signed integer to uint64, rejecting negatives.
func Uint64[T ~int | ~int32 | ~int64](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range", v)
	}
	return uint64(v), nil
}

// Int converts an unsigned integer to int, rejecting values above math.MaxInt.
func Int[T ~uint | ~uint32 | ~uint64](v T) (int, error) {
	if uint64(v) > math.MaxInt {
		return 0, fmt.Errorf("value %d out of int range", v)
	}
	return int(v), nil
}
