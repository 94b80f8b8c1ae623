package pricefeed

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

// Static serves prices set by the caller, e.g. from a command line flag.
type Static struct {
	mu     sync.RWMutex
	prices map[string]float64
}

// NewStatic creates a static source seeded with prices.
func NewStatic(prices map[string]float64) *Static {
	s := &Static{
		mu:     sync.RWMutex{},
		prices: make(map[string]float64, len(prices)),
	}

	for symbol, price := range prices {
		s.prices[normalize(symbol)] = price
	}

	return s
}

// Set sets the price of symbol.
func (s *Static) Set(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices[normalize(symbol)] = price
}

// LastPrice implements Source.
func (s *Static) LastPrice(_ context.Context, symbol string) (float64, error) {
	s.mu.RLock()
	price, ok := s.prices[normalize(symbol)]
	s.mu.RUnlock()

	if !ok {
		return 0, errors.Newf(errors.ErrCodePriceUnavailable, "no price set for %s", symbol)
	}

	return checkPrice(symbol, price)
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func checkPrice(symbol string, price float64) (float64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, errors.Newf(errors.ErrCodePriceUnavailable, "invalid price %v for %s", price, symbol)
	}

	return price, nil
}
