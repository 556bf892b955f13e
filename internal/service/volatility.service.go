package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"notesim/internal/domain"
	"notesim/internal/logger"
	"notesim/internal/repository"

	"github.com/montanaflynn/stats"
)

const (
	volatilityLookbackDays = 90
	tradingDaysPerQuarter  = 63

	// need a handful of bars before a stdev means anything
	minReturnObservations = 20
)

// VolatilityService estimates the per-period sigma fed to the path generator
// when the caller does not supply one.
type VolatilityService interface {
	// PeriodVolatility returns one quarterly sigma for the basket, the mean
	// of the per-symbol estimates.
	PeriodVolatility(ctx context.Context, symbols []string) (float64, error)
}

type volatilityServiceHandler struct {
	QuoteRepository repository.QuoteRepository
}

func NewVolatilityService(quoteRepository repository.QuoteRepository) VolatilityService {
	return &volatilityServiceHandler{
		QuoteRepository: quoteRepository,
	}
}

func (h volatilityServiceHandler) PeriodVolatility(ctx context.Context, symbols []string) (float64, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -volatilityLookbackDays)

	estimates := make(stats.Float64Data, 0, len(symbols))
	for _, symbol := range symbols {
		sigma, err := h.symbolVolatility(symbol, start, end)
		if err != nil {
			return 0, err
		}
		estimates = append(estimates, sigma)
	}

	basketSigma, err := stats.Mean(estimates)
	if err != nil {
		return 0, fmt.Errorf("failed to average symbol volatilities: %w", err)
	}

	logger.FromContext(ctx).Debugw("estimated basket volatility",
		"symbols", symbols,
		"sigma", basketSigma,
	)

	return basketSigma, nil
}

func (h volatilityServiceHandler) symbolVolatility(symbol string, start, end time.Time) (float64, error) {
	prices, err := h.QuoteRepository.History(symbol, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to load history for %s: %w", symbol, err)
	}

	returns := dailyLogReturns(prices)
	if len(returns) < minReturnObservations {
		return 0, domain.PriceUnavailableError{
			Symbol: symbol,
			Err:    fmt.Errorf("only %d daily returns in trailing window", len(returns)),
		}
	}

	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate stdev for %s: %w", symbol, err)
	}

	// scale the daily stdev to one observation period
	return stdev * math.Sqrt(tradingDaysPerQuarter), nil
}

func dailyLogReturns(prices []domain.AssetPrice) []float64 {
	returns := []float64{}
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1].Price
		curr := prices[i].Price
		if prev <= 0 || curr <= 0 {
			continue
		}
		returns = append(returns, math.Log(curr/prev))
	}
	return returns
}
