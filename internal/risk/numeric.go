package risk

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finite returns v, or 0 when v is NaN or infinite.
func finite(v float64) float64 {
	if !isFinite(v) {
		return 0
	}

	return v
}

func positive(v float64) bool {
	return finite(v) > 0
}

// dec converts a sanitized float. decimal.NewFromFloat panics on NaN and Inf,
// so every caller must pass finite values only.
func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(finite(v))
}

// float converts back to float64. Results too large for a float64 become 0.
func float(d decimal.Decimal) float64 {
	f, _ := d.Float64()

	return finite(f)
}

// fee returns a charged fee, treating negative and non-finite values as 0.
func fee(v float64) float64 {
	v = finite(v)
	if v < 0 {
		return 0
	}

	return v
}

func leverageOf(leverage float64) decimal.Decimal {
	if !positive(leverage) || leverage < 1 {
		return decimal.NewFromInt(1)
	}

	return dec(leverage)
}
