package risk

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/shopspring/decimal"
)

// LiquidationThreshold is the fraction of margin whose loss forces liquidation.
const LiquidationThreshold = 0.9

// Risk tier boundaries, in percent of distance to the liquidation price.
const (
	HighRiskDistance   = 20.0
	MediumRiskDistance = 50.0
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
	// RiskLevelLiquidated means the price has already crossed the modeled
	// liquidation price and the backend sweep has not closed the position yet.
	RiskLevelLiquidated RiskLevel = "liquidated"
)

// Risk describes how close a position is to liquidation.
type Risk struct {
	LiquidationPrice float64 `json:"liquidationPrice"`
	// Distance is the signed percentage move from the current price to the
	// liquidation price. Negative means the threshold has been crossed.
	Distance float64   `json:"distance"`
	Level    RiskLevel `json:"level"`
}

// LiquidationPrice estimates the price at which the position loses
// LiquidationThreshold of its margin. At leverage L a move of threshold/L
// against the position consumes that fraction of margin.
//
//	long:  entryPrice * (1 - threshold/L)
//	short: entryPrice * (1 + threshold/L)
//
// It returns None for unleveraged positions (leverage <= 1) and for snapshots
// without a usable entry price or side.
func LiquidationPrice(position types.Position) optional.Option[float64] {
	return liquidationPrice(position.Side, position.EntryPrice, position.Leverage)
}

func liquidationPrice(side types.Side, entryPrice, leverage float64) optional.Option[float64] {
	if !positive(leverage) || leverage <= 1 || !positive(entryPrice) {
		return optional.None[float64]()
	}

	ratio := decimal.NewFromFloat(LiquidationThreshold).Div(dec(leverage))
	one := decimal.NewFromInt(1)

	switch side {
	case types.SideLong:
		return optional.Some(float(dec(entryPrice).Mul(one.Sub(ratio))))
	case types.SideShort:
		return optional.Some(float(dec(entryPrice).Mul(one.Add(ratio))))
	default:
		return optional.None[float64]()
	}
}

// ClassifyRisk maps a liquidation distance to a tier: high below 20,
// medium below 50, low otherwise. A negative distance is reported as
// liquidated. NaN is treated as 0.
func ClassifyRisk(distance float64) RiskLevel {
	distance = finite(distance)

	switch {
	case distance < 0:
		return RiskLevelLiquidated
	case distance < HighRiskDistance:
		return RiskLevelHigh
	case distance < MediumRiskDistance:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// LiquidationRisk returns the liquidation price, signed distance and tier of
// the position at currentPrice.
//
//	long:  ((currentPrice - liquidationPrice) / currentPrice) * 100
//	short: ((liquidationPrice - currentPrice) / currentPrice) * 100
//
// It returns None when the position has no liquidation price or the current
// price is not usable.
func LiquidationRisk(position types.Position, currentPrice float64) optional.Option[Risk] {
	liq := LiquidationPrice(position)
	if liq.IsNone() || !positive(currentPrice) {
		return optional.None[Risk]()
	}

	liqPrice := liq.Unwrap()
	current := dec(currentPrice)

	gap := current.Sub(dec(liqPrice))
	if position.Side == types.SideShort {
		gap = gap.Neg()
	}

	distance := float(gap.Div(current).Mul(hundred))

	return optional.Some(Risk{
		LiquidationPrice: liqPrice,
		Distance:         distance,
		Level:            ClassifyRisk(distance),
	})
}
