package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

type CloseType string

const (
	CloseTypeManual  CloseType = "manual"
	CloseTypePartial CloseType = "partial"
)

type CloseReason string

const (
	CloseReasonManual      CloseReason = "manual"
	CloseReasonStopLoss    CloseReason = "stop_loss"
	CloseReasonTakeProfit  CloseReason = "take_profit"
	CloseReasonLiquidation CloseReason = "liquidation"
	CloseReasonPartial     CloseReason = "partial"
)

// PendingOrder is a limit order that has not been filled yet.
// It never carries realized or unrealized P&L.
type PendingOrder struct {
	ID             string                      `json:"id" yaml:"id" validate:"required"`
	Symbol         string                      `json:"symbol" yaml:"symbol" validate:"required"`
	Side           Side                        `json:"side" yaml:"side" validate:"required,oneof=long short"`
	Quantity       float64                     `json:"quantity" yaml:"quantity" validate:"gt=0"`
	Leverage       float64                     `json:"leverage" yaml:"leverage" validate:"gte=1"`
	LimitPrice     float64                     `json:"limitPrice" yaml:"limitPrice" validate:"gt=0"`
	MarginReserved float64                     `json:"marginReserved" yaml:"marginReserved" validate:"gte=0"`
	StopLoss       optional.Option[PriceLevel] `json:"stopLoss,omitempty" yaml:"stopLoss,omitempty" validate:"omitempty,dive"`
	TakeProfit     optional.Option[PriceLevel] `json:"takeProfit,omitempty" yaml:"takeProfit,omitempty" validate:"omitempty,dive"`
	OrderTime      time.Time                   `json:"orderTime" yaml:"orderTime" validate:"required"`
}

// Validate validates the PendingOrder struct.
func (o *PendingOrder) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPosition, "invalid pending order", err)
	}

	return nil
}

// EffectiveLeverage returns the leverage multiplier, treating missing or
// sub-1 values as unleveraged.
func (o *PendingOrder) EffectiveLeverage() float64 {
	return effectiveLeverage(o.Leverage)
}

// Notional returns the exposure the order would open at its limit price.
func (o *PendingOrder) Notional() float64 {
	if !isPositive(o.LimitPrice) || !isPositive(o.Quantity) {
		return 0
	}

	notional := o.LimitPrice * o.Quantity * o.EffectiveLeverage()
	if !isFinite(notional) {
		return 0
	}

	return notional
}

// AsPosition returns the position the order would become if filled at its limit price.
func (o *PendingOrder) AsPosition() Position {
	return Position{
		ID:         o.ID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Quantity:   o.Quantity,
		Leverage:   o.Leverage,
		EntryPrice: o.LimitPrice,
		MarginUsed: o.MarginReserved,
		StopLoss:   o.StopLoss,
		TakeProfit: o.TakeProfit,
		EntryTime:  o.OrderTime,
	}
}
