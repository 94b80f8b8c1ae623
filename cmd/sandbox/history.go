package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rxtech-lab/sandbox-risk/internal/history"
	"github.com/rxtech-lab/sandbox-risk/internal/sandbox"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List closed trades and ledger transactions, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page `NUMBER`, starting at 1",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Items per page, at most 100; defaults to history.pageLimit",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Fetch every page",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print items as JSON",
			},
		},
		Action: historyAction,
	}
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	client, err := a.client()
	if err != nil {
		return err
	}

	limit := a.config.History.PageLimit
	if cmd.IsSet("limit") {
		limit = int(cmd.Int("limit"))
	}

	var items []history.Item
	if cmd.Bool("all") {
		items, err = fetchAll(ctx, client, limit, a)
	} else {
		var query sandbox.HistoryQuery

		query, err = sandbox.NewHistoryQuery(int(cmd.Int("page")), limit)
		if err != nil {
			return err
		}

		var page history.Page

		page, err = client.History(ctx, query)
		items = page.Items

		if err == nil && page.HasMore {
			defer fmt.Fprintln(a.out, HelpStyle.Render(fmt.Sprintf("Page %d of %d items, more available with --page %d", page.Page, page.TotalItems, page.Page+1)))
		}
	}

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		encoder := json.NewEncoder(a.out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(items)
	}

	renderHistory(a.out, a.formatter, items)

	return nil
}

// fetchAll walks every history page. The pages are merged again at the end
// because items dated on a page boundary may arrive out of order.
func fetchAll(ctx context.Context, api sandbox.API, limit int, a *app) ([]history.Item, error) {
	var (
		bar          *progressbar.ProgressBar
		trades       = make([]history.Item, 0)
		transactions = make([]history.Item, 0)
	)

	for page := 1; ; page++ {
		query, err := sandbox.NewHistoryQuery(page, limit)
		if err != nil {
			return nil, err
		}

		result, err := api.History(ctx, query)
		if err != nil {
			return nil, err
		}

		if bar == nil {
			bar = progressbar.NewOptions(result.TotalItems,
				progressbar.OptionSetDescription("Fetching history"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish())
		}

		for _, item := range result.Items {
			if item.Kind == history.ItemKindTrade {
				trades = append(trades, item)
			} else {
				transactions = append(transactions, item)
			}
		}

		_ = bar.Add(len(result.Items))
		a.log.Debug("Fetched history page", zap.Int("page", page), zap.Int("items", len(result.Items)))

		if !result.HasMore || len(result.Items) == 0 {
			break
		}
	}

	_ = bar.Finish()

	return remerge(trades, transactions), nil
}

func remerge(trades, transactions []history.Item) []history.Item {
	page := history.Page{Items: append(trades, transactions...)}

	return history.Merge(page.Trades(), page.Transactions())
}
