package sandbox

import (
	"context"

	"github.com/rxtech-lab/sandbox-risk/internal/history"
)

// Sandbox endpoint paths.
const (
	PathCloseTrade          = "/api/sandbox/close-trade"
	PathCancelOrder         = "/api/sandbox/cancel-order"
	PathUpdateTrade         = "/api/sandbox/update-trade"
	PathForceCheckPositions = "/api/sandbox/force-check-positions"
	PathHistory             = "/api/sandbox/history"
)

// Result is the outcome reported by a sandbox mutation endpoint.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// API is the sandbox trading backend. Requests are built and validated by the
// New*Request constructors before they reach an API.
type API interface {
	// Close fully or partially closes an open position.
	Close(ctx context.Context, req CloseRequest) (Result, error)
	// CancelOrder cancels a pending order.
	CancelOrder(ctx context.Context, req CancelOrderRequest) (Result, error)
	// UpdateRiskLevels edits the stop loss and take profit of a position.
	UpdateRiskLevels(ctx context.Context, req UpdateRiskLevelsRequest) (Result, error)
	// ForceCheckPositions asks the backend to run its stop loss, take profit
	// and liquidation sweep now.
	ForceCheckPositions(ctx context.Context) (Result, error)
	// History returns one page of closed trades and ledger transactions,
	// merged newest first.
	History(ctx context.Context, query HistoryQuery) (history.Page, error)
}
