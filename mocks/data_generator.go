package mocks

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/sandbox-risk/internal/types"
)

// PricePoint is one mark price of a generated price path.
type PricePoint struct {
	Symbol string
	Time   time.Time
	Price  float64
}

// DataGenerator generates price paths and position snapshots for tests and
// benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how prices are generated.
type GeneratorConfig struct {
	// Symbol is the trading pair (e.g., "BTCUSDT")
	Symbol string
	// StartTime is the time of the first price
	StartTime time.Time
	// Interval is the duration between prices
	Interval time.Duration
	// Count is the number of prices to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per step)
	Volatility float64
	// Trend is the drift over the whole path (-0.5 to 0.5 for bearish to bullish)
	Trend float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:       "BTCUSDT",
		StartTime:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:     time.Minute,
		Count:        1000,
		InitialPrice: 100.0,
		Volatility:   0.01,
		Trend:        0.0,
	}
}

// PricePath creates a geometric Brownian motion price path.
func (g *DataGenerator) PricePath(config GeneratorConfig) []PricePoint {
	path := make([]PricePoint, config.Count)
	price := config.InitialPrice
	at := config.StartTime

	for i := 0; i < config.Count; i++ {
		path[i] = PricePoint{
			Symbol: config.Symbol,
			Time:   at,
			Price:  roundToDecimals(price, 4),
		}

		// Box-Muller
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		next := price * (1 + config.Volatility*z + config.Trend/float64(config.Count))
		if next <= 0 {
			next = price * 0.99
		}

		price = next
		at = at.Add(config.Interval)
	}

	return path
}

// PositionConfig configures how positions are generated.
type PositionConfig struct {
	Symbol     string
	EntryPrice float64
	// MaxLeverage bounds the leverage, drawn uniformly from whole numbers in [1, MaxLeverage].
	MaxLeverage int
	// MaxQuantity bounds the quantity, drawn uniformly from (0, MaxQuantity].
	MaxQuantity float64
	// MaxFee bounds each of the funding and trading fees already charged.
	MaxFee    float64
	EntryTime time.Time
}

// DefaultPositionConfig returns a sensible default configuration.
func DefaultPositionConfig() PositionConfig {
	return PositionConfig{
		Symbol:      "BTCUSDT",
		EntryPrice:  100.0,
		MaxLeverage: 20,
		MaxQuantity: 10,
		MaxFee:      0,
		EntryTime:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Positions creates count open positions with random side, leverage and size.
// Margin follows the backend model: entryPrice * quantity.
func (g *DataGenerator) Positions(count int, config PositionConfig) []types.Position {
	positions := make([]types.Position, count)

	for i := range positions {
		side := types.SideLong
		if g.rng.Intn(2) == 1 {
			side = types.SideShort
		}

		quantity := roundToDecimals((1-g.rng.Float64())*config.MaxQuantity, 6)
		if quantity <= 0 {
			quantity = 0.000001
		}

		positions[i] = types.Position{
			ID:         fmt.Sprintf("pos-%d", i+1),
			Symbol:     config.Symbol,
			Side:       side,
			Quantity:   quantity,
			Leverage:   float64(1 + g.rng.Intn(max(config.MaxLeverage, 1))),
			EntryPrice: config.EntryPrice,
			MarginUsed: config.EntryPrice * quantity,
			Fees: types.Fees{
				Funding: roundToDecimals(g.rng.Float64()*config.MaxFee, 2),
				Trading: roundToDecimals(g.rng.Float64()*config.MaxFee, 2),
			},
			EntryTime: config.EntryTime,
		}
	}

	return positions
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
