package types

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// IsValid reports whether the side is one of the known sides.
func (s Side) IsValid() bool {
	return s == SideLong || s == SideShort
}

// PriceLevel is a stop-loss or take-profit trigger.
type PriceLevel struct {
	Price float64 `json:"price" yaml:"price" validate:"gt=0"`
}

// Fees holds the costs already charged to a position by the backend.
type Fees struct {
	// Funding is the cumulative funding charged so far. Never negative.
	Funding float64 `json:"funding" yaml:"funding" validate:"gte=0"`
	// Trading is the open/close commission charged so far.
	Trading float64 `json:"trading" yaml:"trading" validate:"gte=0"`
}

// Position is an open leveraged paper position as reported by the sandbox backend.
// The backend owns it; this package only reads snapshots.
type Position struct {
	ID         string  `json:"id" yaml:"id" validate:"required"`
	Symbol     string  `json:"symbol" yaml:"symbol" validate:"required"`
	Side       Side    `json:"side" yaml:"side" validate:"required,oneof=long short"`
	Quantity   float64 `json:"quantity" yaml:"quantity" validate:"gt=0"`
	Leverage   float64 `json:"leverage" yaml:"leverage" validate:"gte=1"`
	EntryPrice float64 `json:"entryPrice" yaml:"entryPrice" validate:"gt=0"`

	// MarginUsed is the collateral at risk. It does not include the leverage multiplier.
	MarginUsed float64 `json:"marginUsed" yaml:"marginUsed" validate:"gt=0"`

	StopLoss   optional.Option[PriceLevel] `json:"stopLoss,omitempty" yaml:"stopLoss,omitempty" validate:"omitempty,dive"`
	TakeProfit optional.Option[PriceLevel] `json:"takeProfit,omitempty" yaml:"takeProfit,omitempty" validate:"omitempty,dive"`
	Fees       Fees                        `json:"fees" yaml:"fees"`
	EntryTime  time.Time                   `json:"entryTime" yaml:"entryTime" validate:"required"`

	// UnrealizedPnL is the net figure reported by the backend, when it sent one.
	// It is authoritative over anything computed locally.
	UnrealizedPnL optional.Option[float64] `json:"unrealizedPnL,omitempty" yaml:"unrealizedPnL,omitempty"`
}

// Validate validates the Position struct.
func (p *Position) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPosition, "invalid position", err)
	}

	return nil
}

// EffectiveLeverage returns the leverage multiplier, treating missing or
// sub-1 values as unleveraged.
func (p *Position) EffectiveLeverage() float64 {
	return effectiveLeverage(p.Leverage)
}

// IsLeveraged reports whether the position uses leverage above 1x.
func (p *Position) IsLeveraged() bool {
	return isFinite(p.Leverage) && p.Leverage > 1
}

// Notional returns currentPrice * quantity * leverage, or 0 when any input is unusable.
func (p *Position) Notional(currentPrice float64) float64 {
	if !isPositive(currentPrice) || !isPositive(p.Quantity) {
		return 0
	}

	notional := currentPrice * p.Quantity * p.EffectiveLeverage()
	if !isFinite(notional) {
		return 0
	}

	return notional
}

func effectiveLeverage(leverage float64) float64 {
	if !isFinite(leverage) || leverage < 1 {
		return 1
	}

	return leverage
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isPositive(v float64) bool {
	return isFinite(v) && v > 0
}
