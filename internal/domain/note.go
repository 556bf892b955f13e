package domain

import "github.com/google/uuid"

// Underlying is one of the stocks backing the note. Immutable once a
// simulation starts.
type Underlying struct {
	Symbol       string
	InitialPrice float64
}

type SimulationState string

const (
	StateRunning    SimulationState = "RUNNING"
	StateAutocalled SimulationState = "AUTOCALLED"
	StateMatured    SimulationState = "MATURED"
)

// PeriodRecord is the outcome of one observation period. Append-only into
// the simulation trace.
type PeriodRecord struct {
	Period       int
	Year         int
	Prices       map[string]float64
	CouponPaid   bool
	CouponAmount float64
	Reason       string

	// set only on annual observation periods
	AutocallObservation bool
	Autocalled          bool
	Redemption          float64
}

// SimulationResult is the full trace of one run. Created once, never mutated
// afterward.
type SimulationResult struct {
	RunID             uuid.UUID
	InitialInvestment float64
	BarrierRatio      float64
	AnnualCouponRate  float64
	Volatility        float64
	InitialPrices     map[string]float64
	BarrierPrices     map[string]float64
	Periods           []PeriodRecord
	State             SimulationState
	Autocalled        bool
}

// TotalCoupons sums the coupons paid across the trace.
func (r SimulationResult) TotalCoupons() float64 {
	total := 0.0
	for _, p := range r.Periods {
		total += p.CouponAmount
	}
	return total
}
