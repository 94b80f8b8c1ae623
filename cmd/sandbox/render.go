package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/sandbox-risk/internal/format"
	"github.com/rxtech-lab/sandbox-risk/internal/history"
	"github.com/rxtech-lab/sandbox-risk/internal/monitor"
	"github.com/rxtech-lab/sandbox-risk/internal/risk"
)

const dash = "-"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(HelpStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Headers(headers...)
}

func renderSnapshot(w io.Writer, f *format.Formatter, snapshot monitor.Snapshot) {
	if len(snapshot.Positions) > 0 {
		t := newTable("ID", "Symbol", "Side", "Lev", "Price", "P&L", "P&L %", "Liq. Price", "Distance", "Risk", "Funding/8h", "Open")

		for _, m := range snapshot.Positions {
			t.Row(positionRow(f, m)...)
		}

		fmt.Fprintln(w, TitleStyle.Render("Open positions"))
		fmt.Fprintln(w, t.String())
	}

	if len(snapshot.Orders) > 0 {
		t := newTable("ID", "Notional", "Margin", "Liq. Price", "Age")

		for _, m := range snapshot.Orders {
			liq := dash
			if m.LiquidationPrice.IsSome() {
				liq = f.Price(m.LiquidationPrice.Unwrap(), 2)
			}

			t.Row(m.OrderID, f.Currency(m.Notional), f.Currency(m.MarginReserved), liq, m.Age)
		}

		fmt.Fprintln(w, TitleStyle.Render("Pending orders"))
		fmt.Fprintln(w, t.String())
	}

	if len(snapshot.AtRisk) > 0 {
		fmt.Fprintln(w, ErrorStyle.Render("Close to liquidation: "+strings.Join(snapshot.AtRisk, ", ")))
	}
}

func positionRow(f *format.Formatter, m risk.Metrics) []string {
	price := dash
	if m.CurrentPrice > 0 {
		price = f.Price(m.CurrentPrice, 2)
	}

	pnl := FormatSigned(m.PnL.Authoritative, f.SignedCurrency(m.PnL.Authoritative))
	pct := FormatSigned(m.PnLPercentage, f.SignedPercent(m.PnLPercentage))

	liq, distance, level := dash, dash, dash
	if m.LiquidationPrice.IsSome() {
		liq = f.Price(m.LiquidationPrice.Unwrap(), 2)
	}

	if m.Risk.IsSome() {
		r := m.Risk.Unwrap()
		distance = f.Percent(r.Distance)
		level = FormatRisk(r.Level)
	}

	funding := dash
	if m.Funding.IsSome() {
		funding = f.Currency(m.NextFunding)
	}

	leverage := fmt.Sprintf("%gx", m.Leverage)

	side := string(m.Side)
	if m.StopLossHit {
		side += " SL!"
	}

	if m.TakeProfitHit {
		side += " TP!"
	}

	return []string{m.PositionID, m.Symbol, side, leverage, price, pnl, pct, liq, distance, level, funding, m.Duration}
}

func renderHistory(w io.Writer, f *format.Formatter, items []history.Item) {
	t := newTable("Date", "Kind", "ID", "Detail", "Amount", "Return", "Duration")

	for _, item := range items {
		date := item.Date.Local().Format("2006-01-02 15:04")

		if item.Trade.IsSome() {
			trade := item.Trade.Unwrap()
			m := risk.EvaluateClosedTrade(trade)
			detail := fmt.Sprintf("%s %s %s @ %s", trade.Side, f.Quantity(trade.Quantity), trade.Symbol, f.Price(trade.ExitPrice, 2))

			t.Row(date, string(m.CloseReason), m.TradeID, detail,
				FormatSigned(m.RealizedPnL, f.SignedCurrency(m.RealizedPnL)),
				FormatSigned(m.RealizedPnLPercentage, f.SignedPercent(m.RealizedPnLPercentage)),
				m.Duration)

			continue
		}

		if item.Transaction.IsSome() {
			tx := item.Transaction.Unwrap()
			detail := string(tx.Type)
			if tx.Description != "" {
				detail += ": " + tx.Description
			}

			t.Row(date, string(item.Kind), tx.ID, detail,
				FormatSigned(tx.Amount, f.SignedCurrency(tx.Amount)), dash, dash)
		}
	}

	fmt.Fprintln(w, t.String())
}
