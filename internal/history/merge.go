package history

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
)

type ItemKind string

const (
	ItemKindTrade       ItemKind = "trade"
	ItemKindTransaction ItemKind = "transaction"
)

// Item is one entry of the merged history stream. Exactly one of Trade and
// Transaction is set, matching Kind.
type Item struct {
	Kind        ItemKind                                 `json:"kind"`
	Date        time.Time                                `json:"date"`
	Trade       optional.Option[types.ClosedTrade]       `json:"trade,omitempty"`
	Transaction optional.Option[types.LedgerTransaction] `json:"transaction,omitempty"`
}

// ID returns the identifier of the underlying trade or transaction.
func (i Item) ID() string {
	switch i.Kind {
	case ItemKindTrade:
		if i.Trade.IsSome() {
			return i.Trade.Unwrap().ID
		}
	case ItemKindTransaction:
		if i.Transaction.IsSome() {
			return i.Transaction.Unwrap().ID
		}
	}

	return ""
}

// Merge combines closed trades and ledger transactions into one stream sorted
// newest first. Trades are dated by exit time and transactions by creation
// time. Entries with equal dates keep their input order, trades before
// transactions.
func Merge(trades []types.ClosedTrade, transactions []types.LedgerTransaction) []Item {
	items := make([]Item, 0, len(trades)+len(transactions))

	for _, trade := range trades {
		items = append(items, Item{
			Kind:        ItemKindTrade,
			Date:        trade.ExitTime,
			Trade:       optional.Some(trade),
			Transaction: optional.None[types.LedgerTransaction](),
		})
	}

	for _, transaction := range transactions {
		items = append(items, Item{
			Kind:        ItemKindTransaction,
			Date:        transaction.CreatedAt,
			Trade:       optional.None[types.ClosedTrade](),
			Transaction: optional.Some(transaction),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	return items
}
