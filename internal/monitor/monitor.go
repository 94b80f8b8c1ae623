package monitor

import (
	"context"
	"time"

	"github.com/rxtech-lab/sandbox-risk/internal/logger"
	"github.com/rxtech-lab/sandbox-risk/internal/pricefeed"
	"github.com/rxtech-lab/sandbox-risk/internal/risk"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"go.uber.org/zap"
)

// Snapshot is the evaluation of a set of open positions and pending orders
// against one round of prices.
type Snapshot struct {
	Positions []risk.Metrics      `json:"positions"`
	Orders    []risk.OrderMetrics `json:"orders"`
	// Prices holds the price used per symbol. Symbols whose price could not
	// be fetched are absent and their positions are evaluated at 0.
	Prices map[string]float64 `json:"prices"`
	// AtRisk lists the ids of positions in the high or liquidated tier.
	AtRisk []string  `json:"atRisk"`
	At     time.Time `json:"at"`
}

// Monitor evaluates positions against live prices.
type Monitor struct {
	source pricefeed.Source
	log    *logger.Logger
	now    func() time.Time
}

// New creates a Monitor reading prices from source.
func New(source pricefeed.Source, log *logger.Logger) *Monitor {
	if log == nil {
		log = logger.NewNop()
	}

	return &Monitor{
		source: source,
		log:    log,
		now:    time.Now,
	}
}

// Evaluate fetches one price per distinct symbol and computes the metrics of
// every position and order. A failed price lookup does not fail the snapshot;
// it is logged and the affected positions show zero P&L until the next round.
// Only a cancelled context aborts evaluation.
func (m *Monitor) Evaluate(ctx context.Context, positions []types.Position, orders []types.PendingOrder) (Snapshot, error) {
	prices := make(map[string]float64)
	missing := make(map[string]bool)

	for _, position := range positions {
		if _, ok := prices[position.Symbol]; ok || missing[position.Symbol] {
			continue
		}

		if err := ctx.Err(); err != nil {
			return Snapshot{}, errors.Wrap(errors.ErrCodePriceUnavailable, "evaluation cancelled", err)
		}

		price, err := m.source.LastPrice(ctx, position.Symbol)
		if err != nil {
			m.log.Warn("Price unavailable, evaluating at zero",
				zap.String("symbol", position.Symbol),
				zap.Error(err))

			missing[position.Symbol] = true

			continue
		}

		prices[position.Symbol] = price
	}

	now := m.now()
	snapshot := Snapshot{
		Positions: make([]risk.Metrics, 0, len(positions)),
		Orders:    make([]risk.OrderMetrics, 0, len(orders)),
		Prices:    prices,
		AtRisk:    []string{},
		At:        now,
	}

	for _, position := range positions {
		metrics := risk.Evaluate(position, prices[position.Symbol], now)
		snapshot.Positions = append(snapshot.Positions, metrics)

		if metrics.Risk.IsSome() {
			level := metrics.Risk.Unwrap().Level
			if level == risk.RiskLevelHigh || level == risk.RiskLevelLiquidated {
				snapshot.AtRisk = append(snapshot.AtRisk, position.ID)
			}
		}
	}

	for _, order := range orders {
		snapshot.Orders = append(snapshot.Orders, risk.EvaluateOrder(order, now))
	}

	return snapshot, nil
}
