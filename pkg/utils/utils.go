package utils

import (
	"math"
	"time"
)

// Point returns a pointer of the given value.
func Point[T any](v T) *T {
	return &v
}

// CeilMinutes converts an elapsed duration into whole billable minutes,
// rounding up. A partial minute of GPU occupancy is billed as a full minute.
func CeilMinutes(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Minutes()))
}
