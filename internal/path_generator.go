package internal

import (
	"math/rand"
	"time"

	"notesim/internal/domain"
)

// ReturnSource produces one per-period return per draw. The simulation loop
// owns no entropy of its own - everything random comes through here, so tests
// can inject fixed or zero-variance sources.
type ReturnSource interface {
	NextReturn() float64
}

// NormalReturnSource draws returns from Normal(0, sigma). Each source wraps
// its own rand.Rand, so concurrent simulations never interleave draws.
type NormalReturnSource struct {
	sigma float64
	rng   *rand.Rand
}

func NewNormalReturnSource(sigma float64) *NormalReturnSource {
	return NewSeededReturnSource(sigma, time.Now().UnixNano())
}

func NewSeededReturnSource(sigma float64, seed int64) *NormalReturnSource {
	return &NormalReturnSource{
		sigma: sigma,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (s *NormalReturnSource) NextReturn() float64 {
	return s.rng.NormFloat64() * s.sigma
}

// NextPrices advances every underlying one period: next = current * (1 + r),
// with r drawn independently per underlying. No cross-asset correlation and
// no autocorrelation across periods - the model is intentionally that simple.
func NextPrices(current *domain.PriceMap, returns ReturnSource) (*domain.PriceMap, error) {
	if current == nil || current.Len() == 0 {
		return nil, domain.InvalidUnderlyingError{Reason: "price state is empty"}
	}

	next := domain.NewPriceMap(current.Symbols())
	for _, symbol := range current.Symbols() {
		price, ok := current.Get(symbol)
		if !ok {
			return nil, domain.InvalidUnderlyingError{Symbol: symbol, Reason: "price state has no price"}
		}
		if price <= 0 {
			return nil, domain.InvalidUnderlyingError{Symbol: symbol, Reason: "price must be positive"}
		}
		r := returns.NextReturn()
		if err := next.Set(symbol, price*(1+r)); err != nil {
			return nil, err
		}
	}

	return next, nil
}
