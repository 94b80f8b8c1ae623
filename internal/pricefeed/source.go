package pricefeed

import (
	"context"

	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

// ProviderType defines the type of price provider.
type ProviderType string

const (
	ProviderStatic  ProviderType = "static"
	ProviderBinance ProviderType = "binance"
	ProviderPolygon ProviderType = "polygon"
)

// Source returns the latest traded price of a symbol.
type Source interface {
	// LastPrice returns the most recent price of symbol. It fails with
	// ErrCodePriceUnavailable when the source has no usable price.
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// NewSource creates a price source based on the provider type.
// The polygon provider requires an API key; static and binance ignore it.
func NewSource(providerType ProviderType, apiKey string) (Source, error) {
	switch providerType {
	case ProviderStatic:
		return NewStatic(nil), nil
	case ProviderBinance:
		return NewBinanceSource(), nil
	case ProviderPolygon:
		return NewPolygonSource(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported price provider: %s", providerType)
	}
}

// SupportedProviders returns the names of all price providers.
func SupportedProviders() []string {
	return []string{string(ProviderStatic), string(ProviderBinance), string(ProviderPolygon)}
}
