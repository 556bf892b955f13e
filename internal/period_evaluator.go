package internal

import (
	"notesim/internal/domain"
)

const (
	ReasonAllAboveBarrier = "all underlyings at or above barrier"
	ReasonBelowBarrier    = "one or more underlyings below barrier"
)

type CouponOutcome struct {
	Paid   bool
	Amount float64
	Reason string
}

type EvaluatePeriodInput struct {
	Prices            *domain.PriceMap
	Barriers          *domain.PriceMap
	InitialInvestment float64
	AnnualCouponRate  float64
	PeriodsPerYear    int
}

// EvaluatePeriod applies the worst-of barrier rule: the coupon is paid in
// full iff every underlying sits at or above its barrier price. One breach
// anywhere voids the whole period's coupon - there is no partial payment.
func EvaluatePeriod(in EvaluatePeriodInput) (CouponOutcome, error) {
	allAbove, err := AllAtOrAbove(in.Prices, in.Barriers)
	if err != nil {
		return CouponOutcome{}, err
	}

	if !allAbove {
		return CouponOutcome{
			Paid:   false,
			Amount: 0,
			Reason: ReasonBelowBarrier,
		}, nil
	}

	return CouponOutcome{
		Paid:   true,
		Amount: in.InitialInvestment * in.AnnualCouponRate / float64(in.PeriodsPerYear),
		Reason: ReasonAllAboveBarrier,
	}, nil
}

// AllAtOrAbove reports whether every price is >= its threshold. The
// comparison is inclusive, which is what makes the autocall tie-break work:
// a price exactly at its initial level still counts. Both maps must cover
// the same underlyings.
func AllAtOrAbove(prices, thresholds *domain.PriceMap) (bool, error) {
	if prices == nil || thresholds == nil || !prices.SameShape(thresholds) {
		return false, domain.ShapeMismatchError{Reason: "prices and thresholds cover different underlyings"}
	}

	for _, symbol := range prices.Symbols() {
		price, _ := prices.Get(symbol)
		threshold, _ := thresholds.Get(symbol)
		if price < threshold {
			return false, nil
		}
	}
	return true, nil
}
