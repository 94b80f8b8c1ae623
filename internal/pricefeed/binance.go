package pricefeed

import (
	"context"
	"strconv"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

// BinanceSource reads the last traded price from the public Binance ticker.
// No credentials are needed.
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource creates a Binance price source against the production API.
func NewBinanceSource() *BinanceSource {
	return &BinanceSource{
		client: binance.NewClient("", ""),
	}
}

// NewBinanceSourceWithBaseURL creates a Binance price source against baseURL,
// e.g. the testnet or a local mock server.
func NewBinanceSourceWithBaseURL(baseURL string) *BinanceSource {
	client := binance.NewClient("", "")
	client.BaseURL = baseURL

	return &BinanceSource{
		client: client,
	}
}

// LastPrice implements Source.
func (b *BinanceSource) LastPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = normalize(symbol)

	prices, err := b.client.NewListPricesService().Symbols([]string{symbol}).Do(ctx)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodePriceUnavailable, err, "failed to fetch %s price from Binance", symbol)
	}

	for _, p := range prices {
		if p == nil || p.Symbol != symbol {
			continue
		}

		price, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodePriceUnavailable, err, "invalid Binance price %q for %s", p.Price, symbol)
		}

		return checkPrice(symbol, price)
	}

	return 0, errors.Newf(errors.ErrCodePriceUnavailable, "Binance returned no price for %s", symbol)
}
