package risk

import (
	"github.com/rxtech-lab/sandbox-risk/internal/types"
)

// PnL is the unrealized profit and loss of a position at a given price.
type PnL struct {
	// Raw is the price-movement P&L before any fee. Informational only.
	Raw float64 `json:"raw"`
	// Net is Raw minus accrued funding and trading fees, computed locally.
	Net float64 `json:"net"`
	// Authoritative is the figure to display: the backend-reported net P&L when
	// the snapshot carried one, otherwise Net.
	Authoritative float64 `json:"authoritative"`
	// FromBackend is true when Authoritative came from the backend.
	FromBackend bool `json:"fromBackend"`
}

// RawPnL returns the price-movement P&L of the position at currentPrice.
//
//	long:  (currentPrice - entryPrice) * quantity * leverage
//	short: (entryPrice - currentPrice) * quantity * leverage
//
// It returns 0 when the price, entry price or quantity is missing, non-positive
// or not finite, e.g. while the market price has not loaded yet.
func RawPnL(position types.Position, currentPrice float64) float64 {
	if !positive(currentPrice) || !positive(position.EntryPrice) || !positive(position.Quantity) {
		return 0
	}

	change := dec(currentPrice).Sub(dec(position.EntryPrice))
	if position.Side == types.SideShort {
		change = change.Neg()
	} else if position.Side != types.SideLong {
		return 0
	}

	return float(change.Mul(dec(position.Quantity)).Mul(leverageOf(position.Leverage)))
}

// NetPnL returns RawPnL minus the funding and trading fees already charged.
// Negative fees are treated as 0.
func NetPnL(position types.Position, currentPrice float64) float64 {
	raw := dec(RawPnL(position, currentPrice))

	return float(raw.Sub(dec(fee(position.Fees.Funding))).Sub(dec(fee(position.Fees.Trading))))
}

// UnrealizedPnL returns the raw, net and authoritative P&L of the position.
// A backend-reported figure always wins over the local computation.
func UnrealizedPnL(position types.Position, currentPrice float64) PnL {
	pnl := PnL{
		Raw:           RawPnL(position, currentPrice),
		Net:           NetPnL(position, currentPrice),
		Authoritative: 0,
		FromBackend:   false,
	}
	pnl.Authoritative = pnl.Net

	if position.UnrealizedPnL.IsSome() {
		pnl.Authoritative = finite(position.UnrealizedPnL.Unwrap())
		pnl.FromBackend = true
	}

	return pnl
}

// PnLPercentage returns the return on margin, (pnl / marginUsed) * 100.
// The denominator is margin, not notional, because leverage already scales pnl.
// It returns 0 when marginUsed is not positive or either input is not finite.
func PnLPercentage(pnl, marginUsed float64) float64 {
	if !isFinite(pnl) || !positive(marginUsed) {
		return 0
	}

	return float(dec(pnl).Div(dec(marginUsed)).Mul(hundred))
}
