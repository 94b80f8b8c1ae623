package mocks

import (
	"testing"

	"github.com/rxtech-lab/sandbox-risk/internal/types"
)

func TestDataGenerator_PricePath(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	path := gen.PricePath(config)

	if len(path) != 100 {
		t.Fatalf("expected 100 prices, got %d", len(path))
	}

	if path[0].Price != config.InitialPrice {
		t.Errorf("expected first price %f, got %f", config.InitialPrice, path[0].Price)
	}

	for i, p := range path {
		if p.Price <= 0 {
			t.Errorf("non-positive price at index %d: %f", i, p.Price)
		}

		if p.Symbol != config.Symbol {
			t.Errorf("expected symbol %s at index %d, got %s", config.Symbol, i, p.Symbol)
		}

		if i > 0 && p.Time.Sub(path[i-1].Time) != config.Interval {
			t.Errorf("unexpected interval at index %d", i)
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Count = 50

	path1 := NewDataGenerator(123).PricePath(config)
	path2 := NewDataGenerator(123).PricePath(config)

	for i := range path1 {
		if path1[i].Price != path2[i].Price {
			t.Errorf("prices differ at index %d: %f vs %f", i, path1[i].Price, path2[i].Price)
		}
	}

	path3 := NewDataGenerator(456).PricePath(config)

	same := true
	for i := 1; i < len(path1); i++ {
		if path1[i].Price != path3[i].Price {
			same = false
			break
		}
	}

	if same {
		t.Error("different seeds produced identical paths")
	}
}

func TestDataGenerator_Positions(t *testing.T) {
	gen := NewDataGenerator(7)
	config := DefaultPositionConfig()
	config.MaxFee = 5

	positions := gen.Positions(200, config)

	if len(positions) != 200 {
		t.Fatalf("expected 200 positions, got %d", len(positions))
	}

	sides := map[types.Side]int{}

	for i := range positions {
		p := positions[i]
		if err := p.Validate(); err != nil {
			t.Errorf("position %d is invalid: %v", i, err)
		}

		if p.Leverage < 1 || p.Leverage > float64(config.MaxLeverage) {
			t.Errorf("leverage out of range at index %d: %f", i, p.Leverage)
		}

		if p.Fees.Funding > config.MaxFee || p.Fees.Trading > config.MaxFee {
			t.Errorf("fees out of range at index %d: %+v", i, p.Fees)
		}

		sides[p.Side]++
	}

	if sides[types.SideLong] == 0 || sides[types.SideShort] == 0 {
		t.Errorf("expected both sides, got %v", sides)
	}
}

func BenchmarkPricePath(b *testing.B) {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 10000

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		gen.PricePath(config)
	}
}
