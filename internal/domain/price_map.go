package domain

import (
	"fmt"
	"time"
)

type AssetPrice struct {
	Symbol string
	Price  float64
	Date   time.Time
}

// PriceMap is a mapping from underlying symbol to price with a key set fixed
// at construction. PriceState, the barrier schedule and the initial prices
// all share the same three keys, and the fixed set keeps them from drifting
// apart mid-simulation. Iteration order follows construction order.
type PriceMap struct {
	symbols []string
	prices  map[string]float64
}

func NewPriceMap(symbols []string) *PriceMap {
	ordered := make([]string, len(symbols))
	copy(ordered, symbols)
	return &PriceMap{
		symbols: ordered,
		prices:  make(map[string]float64, len(ordered)),
	}
}

// NewPriceMapFrom builds a fully-populated map in one shot.
func NewPriceMapFrom(symbols []string, prices map[string]float64) (*PriceMap, error) {
	m := NewPriceMap(symbols)
	for _, symbol := range symbols {
		price, ok := prices[symbol]
		if !ok {
			return nil, fmt.Errorf("missing price for %s", symbol)
		}
		if err := m.Set(symbol, price); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PriceMap) Set(symbol string, price float64) error {
	if _, ok := m.prices[symbol]; !ok {
		found := false
		for _, s := range m.symbols {
			if s == symbol {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("symbol %s is not part of this price map", symbol)
		}
	}
	m.prices[symbol] = price
	return nil
}

func (m PriceMap) Get(symbol string) (float64, bool) {
	price, ok := m.prices[symbol]
	return price, ok
}

// Symbols returns the key set in construction order.
func (m PriceMap) Symbols() []string {
	out := make([]string, len(m.symbols))
	copy(out, m.symbols)
	return out
}

func (m PriceMap) Len() int {
	return len(m.symbols)
}

// Values returns a plain map copy, for JSON serialization and PeriodRecords.
func (m PriceMap) Values() map[string]float64 {
	out := make(map[string]float64, len(m.prices))
	for symbol, price := range m.prices {
		out[symbol] = price
	}
	return out
}

// SameShape reports whether both maps cover an identical symbol set.
func (m PriceMap) SameShape(other *PriceMap) bool {
	if other == nil || len(m.symbols) != len(other.symbols) {
		return false
	}
	for _, symbol := range m.symbols {
		if _, ok := other.prices[symbol]; !ok {
			return false
		}
	}
	return true
}
