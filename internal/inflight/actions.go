package inflight

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/internal/logger"
	"github.com/rxtech-lab/sandbox-risk/internal/sandbox"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"go.uber.org/zap"
)

// Actions executes sandbox mutations with at most one request in flight per
// position or order id. Requests are validated before the id is claimed, so
// invalid input never blocks a later valid request. Failures are returned to
// the caller unchanged and never retried.
type Actions struct {
	api     sandbox.API
	tracker *Tracker
	log     *logger.Logger
}

// NewActions creates Actions on top of api. A nil tracker gets a fresh one.
func NewActions(api sandbox.API, tracker *Tracker, log *logger.Logger) *Actions {
	if tracker == nil {
		tracker = NewTracker()
	}

	if log == nil {
		log = logger.NewNop()
	}

	return &Actions{
		api:     api,
		tracker: tracker,
		log:     log,
	}
}

// Tracker returns the tracker guarding the actions.
func (a *Actions) Tracker() *Tracker {
	return a.tracker
}

// ClosePosition closes positionID in full (manual) or in part.
func (a *Actions) ClosePosition(ctx context.Context, positionID string, closeType types.CloseType, partialPercentage optional.Option[int]) (sandbox.Result, error) {
	req, err := sandbox.NewCloseRequest(positionID, closeType, partialPercentage)
	if err != nil {
		return sandbox.Result{}, err
	}

	return a.run(positionID, "close position", func() (sandbox.Result, error) {
		return a.api.Close(ctx, req)
	}, zap.String("closeType", string(closeType)))
}

// CancelOrder cancels the pending order orderID.
func (a *Actions) CancelOrder(ctx context.Context, orderID string) (sandbox.Result, error) {
	req, err := sandbox.NewCancelOrderRequest(orderID)
	if err != nil {
		return sandbox.Result{}, err
	}

	return a.run(orderID, "cancel order", func() (sandbox.Result, error) {
		return a.api.CancelOrder(ctx, req)
	})
}

// UpdateRiskLevels sets the stop loss and/or take profit of positionID.
func (a *Actions) UpdateRiskLevels(ctx context.Context, positionID string, stopLoss, takeProfit optional.Option[float64]) (sandbox.Result, error) {
	req, err := sandbox.NewUpdateRiskLevelsRequest(positionID, stopLoss, takeProfit)
	if err != nil {
		return sandbox.Result{}, err
	}

	return a.run(positionID, "update risk levels", func() (sandbox.Result, error) {
		return a.api.UpdateRiskLevels(ctx, req)
	})
}

func (a *Actions) run(id, action string, execute func() (sandbox.Result, error), fields ...zap.Field) (sandbox.Result, error) {
	if err := a.tracker.Begin(id); err != nil {
		a.log.Warn("Request rejected, another one is in flight",
			append(fields, zap.String("id", id), zap.String("action", action))...)

		return sandbox.Result{}, err
	}

	completed := false
	defer func() {
		if !completed {
			a.tracker.Fail(id, errors.Newf(errors.ErrCodeInternal, "%s panicked", action))
		}
	}()

	result, err := execute()
	completed = true

	if err != nil {
		a.tracker.Fail(id, err)
		a.log.Error("Sandbox request failed",
			append(fields,
				zap.String("id", id),
				zap.String("action", action),
				zap.Int("code", int(errors.GetCode(err))),
				zap.String("message", errors.Message(err)),
				zap.Error(err))...)

		return sandbox.Result{}, err
	}

	a.tracker.Resolve(id)
	a.log.Info("Sandbox request succeeded",
		append(fields, zap.String("id", id), zap.String("action", action), zap.String("message", result.Message))...)

	return result, nil
}
