package dosing

import (
	"math"

	"github.com/shopspring/decimal"

	"dripcalc/internal/models"
)

var two = decimal.NewFromInt(2)

// RoundToHalf rounds x to the nearest 0.5, ties to even on the doubled value
// (round(2x)/2). Non-finite values are returned unchanged.
func RoundToHalf(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Mul(two).RoundBank(0).Div(two).Float64()
	return f
}

// stepRate applies n multiples of Δ to rate (2Δ when |n| is 2) and clamps at zero.
func stepRate(rate float64, step models.Step, n int) float64 {
	amount := decimal.NewFromFloat(step.Delta).Mul(decimal.NewFromInt(int64(n)))
	if n == 2 || n == -2 {
		amount = decimal.NewFromFloat(step.TwoDelta).Mul(decimal.NewFromInt(int64(n / 2)))
	}
	return clamp(decimal.NewFromFloat(rate).Add(amount))
}

// scaleRate returns rate * fraction, clamped at zero.
func scaleRate(rate, fraction float64) float64 {
	return clamp(decimal.NewFromFloat(rate).Mul(decimal.NewFromFloat(fraction)))
}

func clamp(d decimal.Decimal) float64 {
	if d.IsNegative() {
		return 0
	}
	f, _ := d.Float64()
	return f
}
