package service

import (
	"context"
	"fmt"

	"notesim/internal"
	"notesim/internal/domain"
	"notesim/internal/logger"
	"notesim/internal/repository"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
)

const (
	requiredUnderlyings = 3

	defaultEnsembleRuns = 1000
	maxEnsembleRuns     = 10000
)

// SimulationHandler drives the period loop for one note: it owns validation,
// the autocall/maturity state machine and the assembly of the result trace.
// Each Simulate call is independent - nothing is shared across runs except
// the quote repository's cache.
type SimulationHandler struct {
	QuoteRepository   repository.QuoteRepository
	VolatilityService VolatilityService

	PeriodsPerYear    int
	TermYears         int
	DefaultVolatility float64
}

type SimulationInput struct {
	Underlyings       []domain.Underlying
	BarrierRatio      float64
	InitialInvestment float64
	AnnualCouponRate  float64

	// Volatility overrides the configured per-period sigma. When nil and
	// EstimateVolatility is set, sigma comes from trailing market data.
	Volatility         *float64
	EstimateVolatility bool

	// Seed pins the random source for reproducible runs.
	Seed *int64

	// Returns overrides the random source entirely. Used by tests and the
	// ensemble loop; takes precedence over Volatility and Seed.
	Returns internal.ReturnSource
}

func (in SimulationInput) validate() error {
	if len(in.Underlyings) != requiredUnderlyings {
		return domain.InvalidParametersError{
			Reason: fmt.Sprintf("expected exactly %d underlyings, got %d", requiredUnderlyings, len(in.Underlyings)),
		}
	}
	seen := map[string]bool{}
	for _, u := range in.Underlyings {
		if u.Symbol == "" {
			return domain.InvalidParametersError{Reason: "underlying ticker must not be empty"}
		}
		if seen[u.Symbol] {
			return domain.InvalidParametersError{Reason: fmt.Sprintf("duplicate underlying %s", u.Symbol)}
		}
		seen[u.Symbol] = true
	}
	if in.BarrierRatio <= 0 || in.BarrierRatio >= 1 {
		return domain.InvalidParametersError{
			Reason: fmt.Sprintf("barrier ratio must be strictly between 0 and 1, got %f", in.BarrierRatio),
		}
	}
	if in.AnnualCouponRate <= 0 || in.AnnualCouponRate >= 1 {
		return domain.InvalidParametersError{
			Reason: fmt.Sprintf("coupon rate must be strictly between 0 and 1, got %f", in.AnnualCouponRate),
		}
	}
	if in.InitialInvestment <= 0 {
		return domain.InvalidParametersError{
			Reason: fmt.Sprintf("initial investment must be positive, got %f", in.InitialInvestment),
		}
	}
	return nil
}

// ResolveUnderlyings fills in initial prices from the live price source for
// tickers the caller did not price.
func (h SimulationHandler) ResolveUnderlyings(ctx context.Context, symbols []string) ([]domain.Underlying, error) {
	out := make([]domain.Underlying, 0, len(symbols))
	for _, symbol := range symbols {
		price, err := h.QuoteRepository.LatestPrice(symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve initial price: %w", err)
		}
		out = append(out, domain.Underlying{Symbol: symbol, InitialPrice: price})
	}
	return out, nil
}

func (h SimulationHandler) sigma(ctx context.Context, in SimulationInput) (float64, error) {
	if in.Volatility != nil {
		return *in.Volatility, nil
	}
	if in.EstimateVolatility && h.VolatilityService != nil {
		symbols := make([]string, 0, len(in.Underlyings))
		for _, u := range in.Underlyings {
			symbols = append(symbols, u.Symbol)
		}
		estimated, err := h.VolatilityService.PeriodVolatility(ctx, symbols)
		if err != nil {
			return 0, fmt.Errorf("failed to estimate volatility: %w", err)
		}
		return estimated, nil
	}
	return h.DefaultVolatility, nil
}

func (h SimulationHandler) Simulate(ctx context.Context, in SimulationInput) (*domain.SimulationResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	sigma, err := h.sigma(ctx, in)
	if err != nil {
		return nil, err
	}

	returns := in.Returns
	if returns == nil {
		if in.Seed != nil {
			returns = internal.NewSeededReturnSource(sigma, *in.Seed)
		} else {
			returns = internal.NewNormalReturnSource(sigma)
		}
	}

	symbols := make([]string, 0, len(in.Underlyings))
	for _, u := range in.Underlyings {
		symbols = append(symbols, u.Symbol)
	}
	initialPrices := domain.NewPriceMap(symbols)
	barrierPrices := domain.NewPriceMap(symbols)
	for _, u := range in.Underlyings {
		if err := initialPrices.Set(u.Symbol, u.InitialPrice); err != nil {
			return nil, err
		}
		// computed once, never recomputed mid-simulation
		if err := barrierPrices.Set(u.Symbol, u.InitialPrice*in.BarrierRatio); err != nil {
			return nil, err
		}
	}

	maxPeriods := h.TermYears * h.PeriodsPerYear
	state := domain.StateRunning
	prices := initialPrices
	records := make([]domain.PeriodRecord, 0, maxPeriods)

	for period := 1; period <= maxPeriods && state == domain.StateRunning; period++ {
		next, err := internal.NextPrices(prices, returns)
		if err != nil {
			return nil, fmt.Errorf("failed to generate prices for period %d: %w", period, err)
		}

		outcome, err := internal.EvaluatePeriod(internal.EvaluatePeriodInput{
			Prices:            next,
			Barriers:          barrierPrices,
			InitialInvestment: in.InitialInvestment,
			AnnualCouponRate:  in.AnnualCouponRate,
			PeriodsPerYear:    h.PeriodsPerYear,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate period %d: %w", period, err)
		}

		record := domain.PeriodRecord{
			Period:       period,
			Year:         (period + h.PeriodsPerYear - 1) / h.PeriodsPerYear,
			Prices:       next.Values(),
			CouponPaid:   outcome.Paid,
			CouponAmount: outcome.Amount,
			Reason:       outcome.Reason,
		}

		if period%h.PeriodsPerYear == 0 {
			record.AutocallObservation = true
			// compared against the original initial prices, never the prior
			// period's. The >= is inclusive.
			autocall, err := internal.AllAtOrAbove(next, initialPrices)
			if err != nil {
				return nil, fmt.Errorf("failed autocall check in period %d: %w", period, err)
			}
			if autocall {
				record.Autocalled = true
				record.Redemption = in.InitialInvestment
				state = domain.StateAutocalled
			}
		}

		records = append(records, record)
		prices = next
	}

	if state != domain.StateAutocalled {
		state = domain.StateMatured
	}

	result := &domain.SimulationResult{
		RunID:             uuid.New(),
		InitialInvestment: in.InitialInvestment,
		BarrierRatio:      in.BarrierRatio,
		AnnualCouponRate:  in.AnnualCouponRate,
		Volatility:        sigma,
		InitialPrices:     initialPrices.Values(),
		BarrierPrices:     barrierPrices.Values(),
		Periods:           records,
		State:             state,
		Autocalled:        state == domain.StateAutocalled,
	}

	logger.FromContext(ctx).Debugw("simulation finished",
		"runID", result.RunID,
		"state", result.State,
		"periods", len(result.Periods),
	)

	return result, nil
}

type EnsembleInput struct {
	SimulationInput
	Runs int
}

// EnsembleSummary aggregates many independent runs of the same note.
type EnsembleSummary struct {
	Runs                int
	AutocallProbability float64
	CouponHitRate       float64
	MeanTotalCoupons    float64
	MedianTotalCoupons  float64
	MeanPeriods         float64
}

// SimulateEnsemble runs the note many times with independent draws and
// summarizes the distribution of outcomes.
func (h SimulationHandler) SimulateEnsemble(ctx context.Context, in EnsembleInput) (*EnsembleSummary, error) {
	if err := in.SimulationInput.validate(); err != nil {
		return nil, err
	}
	runs := in.Runs
	if runs == 0 {
		runs = defaultEnsembleRuns
	}
	if runs < 0 || runs > maxEnsembleRuns {
		return nil, domain.InvalidParametersError{
			Reason: fmt.Sprintf("runs must be between 1 and %d, got %d", maxEnsembleRuns, in.Runs),
		}
	}

	autocalled := 0
	couponsPaid := 0
	periodsObserved := 0
	totalCoupons := make(stats.Float64Data, 0, runs)
	periodCounts := make(stats.Float64Data, 0, runs)

	for i := 0; i < runs; i++ {
		runInput := in.SimulationInput
		if runInput.Seed != nil {
			seed := *runInput.Seed + int64(i)
			runInput.Seed = &seed
		}
		result, err := h.Simulate(ctx, runInput)
		if err != nil {
			return nil, fmt.Errorf("ensemble run %d failed: %w", i+1, err)
		}

		if result.Autocalled {
			autocalled++
		}
		for _, p := range result.Periods {
			periodsObserved++
			if p.CouponPaid {
				couponsPaid++
			}
		}
		totalCoupons = append(totalCoupons, result.TotalCoupons())
		periodCounts = append(periodCounts, float64(len(result.Periods)))
	}

	meanCoupons, err := stats.Mean(totalCoupons)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mean coupons: %w", err)
	}
	medianCoupons, err := stats.Median(totalCoupons)
	if err != nil {
		return nil, fmt.Errorf("failed to compute median coupons: %w", err)
	}
	meanPeriods, err := stats.Mean(periodCounts)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mean periods: %w", err)
	}

	return &EnsembleSummary{
		Runs:                runs,
		AutocallProbability: float64(autocalled) / float64(runs),
		CouponHitRate:       float64(couponsPaid) / float64(periodsObserved),
		MeanTotalCoupons:    meanCoupons,
		MedianTotalCoupons:  medianCoupons,
		MeanPeriods:         meanPeriods,
	}, nil
}
