package internal

import (
	"testing"

	"notesim/internal/domain"

	"github.com/stretchr/testify/require"
)

func mustPriceMap(t *testing.T, prices map[string]float64, symbols ...string) *domain.PriceMap {
	t.Helper()
	m, err := domain.NewPriceMapFrom(symbols, prices)
	require.NoError(t, err)
	return m
}

func TestEvaluatePeriod(t *testing.T) {
	symbols := []string{"AAPL", "MSFT", "GOOG"}
	barriers := map[string]float64{"AAPL": 50, "MSFT": 100, "GOOG": 25}

	t.Run("all above barrier pays full coupon", func(t *testing.T) {
		outcome, err := EvaluatePeriod(EvaluatePeriodInput{
			Prices:            mustPriceMap(t, map[string]float64{"AAPL": 100, "MSFT": 200, "GOOG": 50}, symbols...),
			Barriers:          mustPriceMap(t, barriers, symbols...),
			InitialInvestment: 10000,
			AnnualCouponRate:  0.08,
			PeriodsPerYear:    4,
		})
		require.NoError(t, err)

		require.True(t, outcome.Paid)
		require.Equal(t, 10000*0.08/4, outcome.Amount)
		require.Equal(t, ReasonAllAboveBarrier, outcome.Reason)
	})

	t.Run("price exactly at barrier still pays", func(t *testing.T) {
		outcome, err := EvaluatePeriod(EvaluatePeriodInput{
			Prices:            mustPriceMap(t, map[string]float64{"AAPL": 50, "MSFT": 100, "GOOG": 25}, symbols...),
			Barriers:          mustPriceMap(t, barriers, symbols...),
			InitialInvestment: 10000,
			AnnualCouponRate:  0.08,
			PeriodsPerYear:    4,
		})
		require.NoError(t, err)

		require.True(t, outcome.Paid)
		require.Equal(t, float64(200), outcome.Amount)
	})

	t.Run("one breach anywhere voids the coupon", func(t *testing.T) {
		outcome, err := EvaluatePeriod(EvaluatePeriodInput{
			Prices:            mustPriceMap(t, map[string]float64{"AAPL": 100, "MSFT": 200, "GOOG": 24.99}, symbols...),
			Barriers:          mustPriceMap(t, barriers, symbols...),
			InitialInvestment: 10000,
			AnnualCouponRate:  0.08,
			PeriodsPerYear:    4,
		})
		require.NoError(t, err)

		require.False(t, outcome.Paid)
		require.Equal(t, float64(0), outcome.Amount)
		require.Equal(t, ReasonBelowBarrier, outcome.Reason)
	})

	t.Run("mismatched underlying sets", func(t *testing.T) {
		_, err := EvaluatePeriod(EvaluatePeriodInput{
			Prices:            mustPriceMap(t, map[string]float64{"AAPL": 100, "MSFT": 200}, "AAPL", "MSFT"),
			Barriers:          mustPriceMap(t, barriers, symbols...),
			InitialInvestment: 10000,
			AnnualCouponRate:  0.08,
			PeriodsPerYear:    4,
		})
		require.ErrorAs(t, err, &domain.ShapeMismatchError{})
	})
}

func TestAllAtOrAbove(t *testing.T) {
	symbols := []string{"AAPL", "MSFT", "GOOG"}
	initial := map[string]float64{"AAPL": 100, "MSFT": 200, "GOOG": 50}

	t.Run("exactly equal counts as above", func(t *testing.T) {
		ok, err := AllAtOrAbove(
			mustPriceMap(t, initial, symbols...),
			mustPriceMap(t, initial, symbols...),
		)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("any underlying below fails the check", func(t *testing.T) {
		ok, err := AllAtOrAbove(
			mustPriceMap(t, map[string]float64{"AAPL": 100, "MSFT": 199.99, "GOOG": 50}, symbols...),
			mustPriceMap(t, initial, symbols...),
		)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("nil thresholds", func(t *testing.T) {
		_, err := AllAtOrAbove(mustPriceMap(t, initial, symbols...), nil)
		require.ErrorAs(t, err, &domain.ShapeMismatchError{})
	})
}
