package risk

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/internal/format"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/shopspring/decimal"
)

// Metrics is every derived value of an open position at one price.
type Metrics struct {
	PositionID       string                       `json:"positionId"`
	Symbol           string                       `json:"symbol"`
	Side             types.Side                   `json:"side"`
	Quantity         float64                      `json:"quantity"`
	Leverage         float64                      `json:"leverage"`
	CurrentPrice     float64                      `json:"currentPrice"`
	Notional         float64                      `json:"notional"`
	PnL              PnL                          `json:"pnl"`
	PnLPercentage    float64                      `json:"pnlPercentage"`
	LiquidationPrice optional.Option[float64]     `json:"liquidationPrice,omitempty"`
	Risk             optional.Option[Risk]        `json:"risk,omitempty"`
	Funding          optional.Option[FundingInfo] `json:"funding,omitempty"`
	NextFunding      float64                      `json:"nextFunding"`
	Duration         string                       `json:"duration"`
	StopLossHit      bool                         `json:"stopLossHit"`
	TakeProfitHit    bool                         `json:"takeProfitHit"`
}

// Evaluate computes the metrics of position at currentPrice, with durations
// measured up to now. It never fails; unusable inputs yield zero values.
func Evaluate(position types.Position, currentPrice float64, now time.Time) Metrics {
	pnl := UnrealizedPnL(position, currentPrice)

	return Metrics{
		PositionID:       position.ID,
		Symbol:           position.Symbol,
		Side:             position.Side,
		Quantity:         finite(position.Quantity),
		Leverage:         position.EffectiveLeverage(),
		CurrentPrice:     finite(currentPrice),
		Notional:         position.Notional(currentPrice),
		PnL:              pnl,
		PnLPercentage:    PnLPercentage(pnl.Authoritative, position.MarginUsed),
		LiquidationPrice: LiquidationPrice(position),
		Risk:             LiquidationRisk(position, currentPrice),
		Funding:          Funding(position),
		NextFunding:      EstimateFundingPerInterval(position, currentPrice),
		Duration:         format.FormatDuration(position.EntryTime, now),
		StopLossHit:      stopLossHit(position, currentPrice),
		TakeProfitHit:    takeProfitHit(position, currentPrice),
	}
}

func stopLossHit(position types.Position, currentPrice float64) bool {
	if position.StopLoss.IsNone() || !positive(currentPrice) {
		return false
	}

	level := position.StopLoss.Unwrap().Price
	if !positive(level) {
		return false
	}

	switch position.Side {
	case types.SideLong:
		return currentPrice <= level
	case types.SideShort:
		return currentPrice >= level
	default:
		return false
	}
}

func takeProfitHit(position types.Position, currentPrice float64) bool {
	if position.TakeProfit.IsNone() || !positive(currentPrice) {
		return false
	}

	level := position.TakeProfit.Unwrap().Price
	if !positive(level) {
		return false
	}

	switch position.Side {
	case types.SideLong:
		return currentPrice >= level
	case types.SideShort:
		return currentPrice <= level
	default:
		return false
	}
}

// OrderMetrics is the derived view of a pending order. Orders have no P&L.
type OrderMetrics struct {
	OrderID          string                       `json:"orderId"`
	Notional         float64                      `json:"notional"`
	MarginReserved   float64                      `json:"marginReserved"`
	LiquidationPrice optional.Option[float64]     `json:"liquidationPrice,omitempty"`
	Funding          optional.Option[FundingInfo] `json:"funding,omitempty"`
	Age              string                       `json:"age"`
}

// EvaluateOrder computes the metrics of a pending order as if it filled at its
// limit price.
func EvaluateOrder(order types.PendingOrder, now time.Time) OrderMetrics {
	filled := order.AsPosition()

	return OrderMetrics{
		OrderID:          order.ID,
		Notional:         order.Notional(),
		MarginReserved:   finite(order.MarginReserved),
		LiquidationPrice: LiquidationPrice(filled),
		Funding:          Funding(filled),
		Age:              format.FormatDuration(order.OrderTime, now),
	}
}

// ClosedTradeMetrics is the derived view of a closed trade.
type ClosedTradeMetrics struct {
	TradeID               string            `json:"tradeId"`
	RealizedPnL           float64           `json:"realizedPnL"`
	RealizedPnLPercentage float64           `json:"realizedPnLPercentage"`
	Duration              string            `json:"duration"`
	CloseReason           types.CloseReason `json:"closeReason"`
}

// EvaluateClosedTrade returns the realized return on margin and the holding
// duration. A duration precomputed by the backend is preferred.
func EvaluateClosedTrade(trade types.ClosedTrade) ClosedTradeMetrics {
	duration := trade.Duration
	if duration == "" {
		duration = format.FormatDuration(trade.EntryTime, trade.ExitTime)
	}

	realized := finite(trade.RealizedPnL)

	return ClosedTradeMetrics{
		TradeID:               trade.ID,
		RealizedPnL:           realized,
		RealizedPnLPercentage: PnLPercentage(realized, trade.MarginUsed),
		Duration:              duration,
		CloseReason:           trade.CloseReason,
	}
}

// PartialCloseQuantity splits the position quantity for a partial close of
// percentage percent. Out-of-range percentages close nothing.
func PartialCloseQuantity(position types.Position, percentage int) (closed, remaining float64) {
	quantity := finite(position.Quantity)
	if quantity <= 0 {
		return 0, 0
	}

	if percentage <= 0 || percentage > 100 {
		return 0, quantity
	}

	total := dec(quantity)
	closedDec := total.Mul(decimal.NewFromInt(int64(percentage))).Div(hundred)

	return float(closedDec), float(total.Sub(closedDec))
}
