package api

import (
	"fmt"
	"testing"

	"notesim/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_statusForError(t *testing.T) {
	t.Run("invalid parameters map to 400", func(t *testing.T) {
		err := domain.InvalidParametersError{Reason: "expected exactly 3 underlyings, got 2"}
		require.Equal(t, 400, statusForError(err))
	})

	t.Run("wrapped invalid parameters still map to 400", func(t *testing.T) {
		err := fmt.Errorf("simulate failed: %w", domain.InvalidParametersError{Reason: "bad barrier"})
		require.Equal(t, 400, statusForError(err))
	})

	t.Run("price unavailable maps to 502", func(t *testing.T) {
		err := fmt.Errorf("failed to resolve initial price: %w", domain.PriceUnavailableError{Symbol: "NOPE"})
		require.Equal(t, 502, statusForError(err))
	})

	t.Run("anything else maps to 500", func(t *testing.T) {
		require.Equal(t, 500, statusForError(fmt.Errorf("boom")))
	})
}

func Test_buildSimulateResponse(t *testing.T) {
	result := &domain.SimulationResult{
		RunID:             uuid.New(),
		InitialInvestment: 10000,
		BarrierRatio:      0.5,
		AnnualCouponRate:  0.08,
		Volatility:        0.10,
		InitialPrices:     map[string]float64{"AAPL": 100},
		BarrierPrices:     map[string]float64{"AAPL": 50},
		Periods: []domain.PeriodRecord{
			{
				Period:       1,
				Year:         1,
				Prices:       map[string]float64{"AAPL": 103.333333},
				CouponPaid:   true,
				CouponAmount: 200.004999,
				Reason:       "all underlyings at or above barrier",
			},
			{
				Period:              4,
				Year:                1,
				Prices:              map[string]float64{"AAPL": 104},
				CouponPaid:          true,
				CouponAmount:        200,
				Reason:              "all underlyings at or above barrier",
				AutocallObservation: true,
				Autocalled:          true,
				Redemption:          10000,
			},
		},
		State:      domain.StateAutocalled,
		Autocalled: true,
	}

	response := buildSimulateResponse(result)

	require.Equal(t, result.RunID.String(), response.RunID)
	require.Equal(t, "AUTOCALLED", response.FinalState)
	require.True(t, response.Autocalled)
	require.Len(t, response.QuarterlyResults, 2)

	first := response.QuarterlyResults[0]
	// money fields are rounded to cents
	require.Equal(t, 200.0, first.CouponAmount)
	require.Equal(t, 103.33, first.Prices["AAPL"])
	// not an annual observation, so no autocall verdict at all
	require.Nil(t, first.Autocalled)
	require.Nil(t, first.Redemption)

	last := response.QuarterlyResults[1]
	require.NotNil(t, last.Autocalled)
	require.True(t, *last.Autocalled)
	require.NotNil(t, last.Redemption)
	require.Equal(t, 10000.0, *last.Redemption)
}
