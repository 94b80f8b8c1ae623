package sandbox

import (
	"math"
	"strconv"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

// Partial close percentage bounds. The backend accepts whole tens only.
const (
	MinPartialPercentage  = 10
	MaxPartialPercentage  = 90
	PartialPercentageStep = 10
)

// History page size bounds.
const (
	MaxHistoryLimit     = 100
	DefaultHistoryLimit = 20
)

// CloseRequest is the body of POST /api/sandbox/close-trade.
type CloseRequest struct {
	TradeID           string               `json:"tradeId"`
	CloseType         types.CloseType      `json:"closeType"`
	PartialPercentage optional.Option[int] `json:"partialPercentage,omitempty"`
}

// NewCloseRequest builds a full or partial close of positionID.
// A partial close needs a percentage in [10, 90] that is a multiple of 10.
// A manual close must not carry a percentage.
func NewCloseRequest(positionID string, closeType types.CloseType, partialPercentage optional.Option[int]) (CloseRequest, error) {
	if positionID == "" {
		return CloseRequest{}, errors.New(errors.ErrCodeMissingParameter, "position id is required")
	}

	switch closeType {
	case types.CloseTypeManual:
		if partialPercentage.IsSome() {
			return CloseRequest{}, errors.New(errors.ErrCodeInvalidPartialPercentage, "partial percentage is only allowed for partial closes")
		}
	case types.CloseTypePartial:
		if partialPercentage.IsNone() {
			return CloseRequest{}, errors.New(errors.ErrCodeInvalidPartialPercentage, "partial percentage is required for partial closes")
		}

		if err := validatePartialPercentage(partialPercentage.Unwrap()); err != nil {
			return CloseRequest{}, err
		}
	default:
		return CloseRequest{}, errors.Newf(errors.ErrCodeInvalidCloseType, "unknown close type %q", closeType)
	}

	return CloseRequest{
		TradeID:           positionID,
		CloseType:         closeType,
		PartialPercentage: partialPercentage,
	}, nil
}

func validatePartialPercentage(pct int) error {
	if pct < MinPartialPercentage || pct > MaxPartialPercentage {
		return errors.Newf(errors.ErrCodeInvalidPartialPercentage,
			"partial percentage %d must be between %d and %d", pct, MinPartialPercentage, MaxPartialPercentage)
	}

	if pct%PartialPercentageStep != 0 {
		return errors.Newf(errors.ErrCodeInvalidPartialPercentage,
			"partial percentage %d must be a multiple of %d", pct, PartialPercentageStep)
	}

	return nil
}

// CancelOrderRequest is the body of POST /api/sandbox/cancel-order.
type CancelOrderRequest struct {
	OrderID string `json:"orderId"`
}

// NewCancelOrderRequest builds a cancellation of a pending order.
func NewCancelOrderRequest(orderID string) (CancelOrderRequest, error) {
	if orderID == "" {
		return CancelOrderRequest{}, errors.New(errors.ErrCodeMissingParameter, "order id is required")
	}

	return CancelOrderRequest{OrderID: orderID}, nil
}

// UpdateRiskLevelsRequest is the body of PUT /api/sandbox/update-trade.
type UpdateRiskLevelsRequest struct {
	TradeID    string                   `json:"tradeId"`
	StopLoss   optional.Option[float64] `json:"stopLoss,omitempty"`
	TakeProfit optional.Option[float64] `json:"takeProfit,omitempty"`
}

// NewUpdateRiskLevelsRequest builds an edit of a position's stop loss and/or
// take profit. At least one level is required and every supplied level must
// be a finite positive price.
func NewUpdateRiskLevelsRequest(positionID string, stopLoss, takeProfit optional.Option[float64]) (UpdateRiskLevelsRequest, error) {
	if positionID == "" {
		return UpdateRiskLevelsRequest{}, errors.New(errors.ErrCodeMissingParameter, "position id is required")
	}

	if stopLoss.IsNone() && takeProfit.IsNone() {
		return UpdateRiskLevelsRequest{}, errors.New(errors.ErrCodeInvalidRiskLevels, "either stop loss or take profit is required")
	}

	if err := validateLevel("stop loss", stopLoss); err != nil {
		return UpdateRiskLevelsRequest{}, err
	}

	if err := validateLevel("take profit", takeProfit); err != nil {
		return UpdateRiskLevelsRequest{}, err
	}

	return UpdateRiskLevelsRequest{
		TradeID:    positionID,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}, nil
}

func validateLevel(name string, level optional.Option[float64]) error {
	if level.IsNone() {
		return nil
	}

	price := level.Unwrap()
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return errors.Newf(errors.ErrCodeInvalidRiskLevels, "%s must be a positive price, got %v", name, price)
	}

	return nil
}

// HistoryQuery is the query of GET /api/sandbox/history.
type HistoryQuery struct {
	Page  int
	Limit int
}

// NewHistoryQuery builds a history page query. Pages start at 1.
func NewHistoryQuery(page, limit int) (HistoryQuery, error) {
	if page < 1 {
		return HistoryQuery{}, errors.Newf(errors.ErrCodeInvalidPagination, "page must be at least 1, got %d", page)
	}

	if limit < 1 || limit > MaxHistoryLimit {
		return HistoryQuery{}, errors.Newf(errors.ErrCodeInvalidPagination, "limit must be between 1 and %d, got %d", MaxHistoryLimit, limit)
	}

	return HistoryQuery{Page: page, Limit: limit}, nil
}

// Params returns the query as URL parameters.
func (q HistoryQuery) Params() map[string]string {
	return map[string]string{
		"page":  strconv.Itoa(q.Page),
		"limit": strconv.Itoa(q.Limit),
	}
}
