package types

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPosition() Position {
	return Position{
		ID:         "pos-1",
		Symbol:     "BTCUSDT",
		Side:       SideLong,
		Quantity:   0.5,
		Leverage:   10,
		EntryPrice: 60000,
		MarginUsed: 3000,
		StopLoss:   optional.None[PriceLevel](),
		TakeProfit: optional.None[PriceLevel](),
		Fees:       Fees{Funding: 1.5},
		EntryTime:  time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestPositionValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(p *Position)
		shouldError bool
	}{
		{
			name:        "valid position",
			mutate:      func(_ *Position) {},
			shouldError: false,
		},
		{
			name: "valid position with stop loss and take profit",
			mutate: func(p *Position) {
				p.StopLoss = optional.Some(PriceLevel{Price: 55000})
				p.TakeProfit = optional.Some(PriceLevel{Price: 70000})
			},
			shouldError: false,
		},
		{
			name:        "missing id",
			mutate:      func(p *Position) { p.ID = "" },
			shouldError: true,
		},
		{
			name:        "unknown side",
			mutate:      func(p *Position) { p.Side = Side("sideways") },
			shouldError: true,
		},
		{
			name:        "zero quantity",
			mutate:      func(p *Position) { p.Quantity = 0 },
			shouldError: true,
		},
		{
			name:        "leverage below one",
			mutate:      func(p *Position) { p.Leverage = 0.5 },
			shouldError: true,
		},
		{
			name:        "missing margin",
			mutate:      func(p *Position) { p.MarginUsed = 0 },
			shouldError: true,
		},
		{
			name:        "nan entry price",
			mutate:      func(p *Position) { p.EntryPrice = math.NaN() },
			shouldError: true,
		},
		{
			name:        "negative stop loss price",
			mutate:      func(p *Position) { p.StopLoss = optional.Some(PriceLevel{Price: -1}) },
			shouldError: true,
		},
		{
			name:        "negative funding",
			mutate:      func(p *Position) { p.Fees.Funding = -2 },
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPosition()
			tt.mutate(&p)

			err := p.Validate()
			if tt.shouldError {
				assert.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidPosition))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPositionNotional(t *testing.T) {
	p := validPosition()
	assert.InDelta(t, 61000*0.5*10, p.Notional(61000), 1e-9)

	p.Leverage = 0
	assert.InDelta(t, 61000*0.5, p.Notional(61000), 1e-9, "missing leverage is treated as 1x")

	assert.Equal(t, 0.0, p.Notional(0))
	assert.Equal(t, 0.0, p.Notional(math.NaN()))
	assert.Equal(t, 0.0, p.Notional(math.Inf(1)))
}

func TestPositionIsLeveraged(t *testing.T) {
	p := validPosition()
	assert.True(t, p.IsLeveraged())

	p.Leverage = 1
	assert.False(t, p.IsLeveraged())

	p.Leverage = math.NaN()
	assert.False(t, p.IsLeveraged())
	assert.Equal(t, 1.0, p.EffectiveLeverage())
}

func TestPositionJSON(t *testing.T) {
	raw := `{
		"id": "pos-9",
		"symbol": "ETHUSDT",
		"side": "short",
		"quantity": 2,
		"leverage": 5,
		"entryPrice": 3000,
		"marginUsed": 1200,
		"stopLoss": {"price": 3200},
		"fees": {"funding": 0.75, "trading": 1.2},
		"entryTime": "2024-03-01T08:30:00Z"
	}`

	var p Position
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, SideShort, p.Side)
	assert.True(t, p.StopLoss.IsSome())
	assert.Equal(t, 3200.0, p.StopLoss.Unwrap().Price)
	assert.True(t, p.TakeProfit.IsNone())
	assert.True(t, p.UnrealizedPnL.IsNone())
	assert.Equal(t, 0.75, p.Fees.Funding)
	assert.NoError(t, p.Validate())
}

func TestPendingOrder(t *testing.T) {
	order := PendingOrder{
		ID:             "ord-1",
		Symbol:         "BTCUSDT",
		Side:           SideShort,
		Quantity:       1,
		Leverage:       4,
		LimitPrice:     50000,
		MarginReserved: 12500,
		OrderTime:      time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}

	assert.NoError(t, order.Validate())
	assert.InDelta(t, 200000.0, order.Notional(), 1e-9)

	position := order.AsPosition()
	assert.Equal(t, "ord-1", position.ID)
	assert.Equal(t, 50000.0, position.EntryPrice)
	assert.Equal(t, 12500.0, position.MarginUsed)
	assert.Equal(t, order.OrderTime, position.EntryTime)

	order.LimitPrice = 0
	assert.Error(t, order.Validate())
	assert.Equal(t, 0.0, order.Notional())
}

func TestSideIsValid(t *testing.T) {
	assert.True(t, SideLong.IsValid())
	assert.True(t, SideShort.IsValid())
	assert.False(t, Side("buy").IsValid())
	assert.False(t, Side("").IsValid())
}
