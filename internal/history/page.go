package history

import (
	"encoding/json"
	"time"

	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

// Page is one decoded page of the sandbox history endpoint.
type Page struct {
	Items      []Item `json:"items"`
	Page       int    `json:"page"`
	HasMore    bool   `json:"hasMore"`
	TotalItems int    `json:"totalItems"`
}

// Trades returns the closed trades of the page in display order.
func (p Page) Trades() []types.ClosedTrade {
	trades := make([]types.ClosedTrade, 0, len(p.Items))
	for _, item := range p.Items {
		if item.Trade.IsSome() {
			trades = append(trades, item.Trade.Unwrap())
		}
	}

	return trades
}

// Transactions returns the ledger transactions of the page in display order.
func (p Page) Transactions() []types.LedgerTransaction {
	transactions := make([]types.LedgerTransaction, 0, len(p.Items))
	for _, item := range p.Items {
		if item.Transaction.IsSome() {
			transactions = append(transactions, item.Transaction.Unwrap())
		}
	}

	return transactions
}

type pagination struct {
	Page       int  `json:"page"`
	HasMore    bool `json:"hasMore"`
	TotalItems int  `json:"totalItems"`
}

type response struct {
	Data       []json.RawMessage `json:"data"`
	Pagination pagination        `json:"pagination"`
}

type envelope struct {
	Kind     ItemKind   `json:"kind"`
	ExitTime *time.Time `json:"exitTime"`
}

// DecodePage decodes a history response body. Elements are routed by their
// "kind" field, or by the presence of "exitTime" when the field is missing,
// and re-merged locally so the stream order does not depend on the backend.
func DecodePage(body []byte, page int) (Page, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Page{}, errors.Wrap(errors.ErrCodeDecodeFailed, "failed to decode history response", err)
	}

	var trades []types.ClosedTrade

	var transactions []types.LedgerTransaction

	for idx, raw := range resp.Data {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return Page{}, errors.Wrapf(errors.ErrCodeDecodeFailed, err, "failed to decode history item %d", idx)
		}

		kind := env.Kind
		if kind == "" {
			kind = ItemKindTransaction
			if env.ExitTime != nil {
				kind = ItemKindTrade
			}
		}

		switch kind {
		case ItemKindTrade:
			var trade types.ClosedTrade
			if err := json.Unmarshal(raw, &trade); err != nil {
				return Page{}, errors.Wrapf(errors.ErrCodeDecodeFailed, err, "failed to decode trade at index %d", idx)
			}

			trades = append(trades, trade)
		case ItemKindTransaction:
			var transaction types.LedgerTransaction
			if err := json.Unmarshal(raw, &transaction); err != nil {
				return Page{}, errors.Wrapf(errors.ErrCodeDecodeFailed, err, "failed to decode transaction at index %d", idx)
			}

			transactions = append(transactions, transaction)
		default:
			return Page{}, errors.Newf(errors.ErrCodeDecodeFailed, "unknown history item kind %q at index %d", kind, idx)
		}
	}

	if resp.Pagination.Page > 0 {
		page = resp.Pagination.Page
	}

	return Page{
		Items:      Merge(trades, transactions),
		Page:       page,
		HasMore:    resp.Pagination.HasMore,
		TotalItems: resp.Pagination.TotalItems,
	}, nil
}
