package risk

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/shopspring/decimal"
)

// Funding is charged by the backend on leveraged positions only. These values
// are for display; the backend computes the actual accrual.
const (
	FundingInterval        = 8 * time.Hour
	FundingRatePerInterval = 0.0001 // 0.01% per 8 hours
	FundingRatePerDay      = 0.0003 // 0.03% per day
)

// FundingInfo is the funding display block of a leveraged position.
type FundingInfo struct {
	RatePerInterval float64       `json:"ratePerInterval"`
	RatePerDay      float64       `json:"ratePerDay"`
	Interval        time.Duration `json:"interval"`
	// Accrued is the cumulative funding already charged by the backend.
	Accrued float64 `json:"accrued"`
}

// Funding returns the funding rate and the funding charged so far, or None
// when the position is not leveraged.
func Funding(position types.Position) optional.Option[FundingInfo] {
	if !position.IsLeveraged() {
		return optional.None[FundingInfo]()
	}

	accrued := fee(position.Fees.Funding)

	return optional.Some(FundingInfo{
		RatePerInterval: FundingRatePerInterval,
		RatePerDay:      FundingRatePerDay,
		Interval:        FundingInterval,
		Accrued:         accrued,
	})
}

// EstimateFundingPerInterval returns the funding the next interval would cost
// at currentPrice: notional * FundingRatePerInterval. It is 0 for
// unleveraged positions. The estimate is never written back to the position.
func EstimateFundingPerInterval(position types.Position, currentPrice float64) float64 {
	if !position.IsLeveraged() {
		return 0
	}

	notional := dec(position.Notional(currentPrice))

	return float(notional.Mul(decimal.NewFromFloat(FundingRatePerInterval)))
}
