package service

import (
	"fmt"
	"math"
	"time"
)

// costFactor scales rate × milliseconds into the billed amount:
// 3 600 000 ms × 25/9 × 1e-7 = 1, so the rate is charged per hour.
const costFactor = (25.0 / 9.0) * 1e-7

// CalculateCost returns rate * (end - start) * 25/9 * 1e-7 rounded to two
// decimals, with the duration measured in milliseconds.
func CalculateCost(rate float64, start, end time.Time) (float64, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0, fmt.Errorf("%w: end must be after start", ErrInvalidWindow)
	}

	millis := float64(end.Sub(start).Milliseconds())
	return roundCents(rate * millis * costFactor), nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
