package api

import (
	"notesim/internal/domain"
	"notesim/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type simulateStock struct {
	Ticker string `json:"ticker"`
	// when omitted, the live price source supplies it
	InitialPrice *float64 `json:"initial_price"`
}

type simulateRequest struct {
	Stocks             []simulateStock `json:"stocks"`
	Barrier            float64         `json:"barrier"`
	InitialInvestment  float64         `json:"initial_investment"`
	CouponRate         float64         `json:"coupon_rate"`
	Volatility         *float64        `json:"volatility"`
	EstimateVolatility bool            `json:"estimate_volatility"`
	Seed               *int64          `json:"seed"`
}

type periodResult struct {
	Period       int                `json:"period"`
	Year         int                `json:"year"`
	Prices       map[string]float64 `json:"prices"`
	CouponPaid   bool               `json:"coupon_paid"`
	CouponAmount float64            `json:"coupon_amount"`
	Reason       string             `json:"reason"`

	Autocalled *bool    `json:"autocalled,omitempty"`
	Redemption *float64 `json:"redemption,omitempty"`
}

type simulateResponse struct {
	RunID             string             `json:"run_id"`
	InitialInvestment float64            `json:"initial_investment"`
	Barrier           float64            `json:"barrier"`
	CouponRate        float64            `json:"coupon_rate"`
	Volatility        float64            `json:"volatility"`
	InitialPrices     map[string]float64 `json:"initial_prices"`
	BarrierPrices     map[string]float64 `json:"barrier_prices"`
	QuarterlyResults  []periodResult     `json:"quarterly_results"`
	Autocalled        bool               `json:"autocalled"`
	FinalState        string             `json:"final_state"`
}

func (m ApiHandler) simulate(c *gin.Context) {
	var requestBody simulateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	in, err := m.toSimulationInput(c, requestBody)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	result, err := m.SimulationService.Simulate(c.Request.Context(), in)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, buildSimulateResponse(result))
}

func (m ApiHandler) toSimulationInput(c *gin.Context, requestBody simulateRequest) (service.SimulationInput, error) {
	missing := []string{}
	for _, s := range requestBody.Stocks {
		if s.InitialPrice == nil {
			missing = append(missing, s.Ticker)
		}
	}

	resolved := map[string]float64{}
	if len(missing) > 0 {
		underlyings, err := m.SimulationService.ResolveUnderlyings(c.Request.Context(), missing)
		if err != nil {
			return service.SimulationInput{}, err
		}
		for _, u := range underlyings {
			resolved[u.Symbol] = u.InitialPrice
		}
	}

	underlyings := make([]domain.Underlying, 0, len(requestBody.Stocks))
	for _, s := range requestBody.Stocks {
		price := resolved[s.Ticker]
		if s.InitialPrice != nil {
			price = *s.InitialPrice
		}
		underlyings = append(underlyings, domain.Underlying{
			Symbol:       s.Ticker,
			InitialPrice: price,
		})
	}

	return service.SimulationInput{
		Underlyings:        underlyings,
		BarrierRatio:       requestBody.Barrier,
		InitialInvestment:  requestBody.InitialInvestment,
		AnnualCouponRate:   requestBody.CouponRate,
		Volatility:         requestBody.Volatility,
		EstimateVolatility: requestBody.EstimateVolatility,
		Seed:               requestBody.Seed,
	}, nil
}

func buildSimulateResponse(result *domain.SimulationResult) simulateResponse {
	quarterlyResults := make([]periodResult, 0, len(result.Periods))
	for _, p := range result.Periods {
		record := periodResult{
			Period:       p.Period,
			Year:         p.Year,
			Prices:       roundPriceMap(p.Prices),
			CouponPaid:   p.CouponPaid,
			CouponAmount: roundMoney(p.CouponAmount),
			Reason:       p.Reason,
		}
		if p.AutocallObservation {
			autocalled := p.Autocalled
			record.Autocalled = &autocalled
			if p.Autocalled {
				redemption := roundMoney(p.Redemption)
				record.Redemption = &redemption
			}
		}
		quarterlyResults = append(quarterlyResults, record)
	}

	return simulateResponse{
		RunID:             result.RunID.String(),
		InitialInvestment: result.InitialInvestment,
		Barrier:           result.BarrierRatio,
		CouponRate:        result.AnnualCouponRate,
		Volatility:        result.Volatility,
		InitialPrices:     roundPriceMap(result.InitialPrices),
		BarrierPrices:     roundPriceMap(result.BarrierPrices),
		QuarterlyResults:  quarterlyResults,
		Autocalled:        result.Autocalled,
		FinalState:        string(result.State),
	}
}

func roundMoney(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

func roundPriceMap(prices map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(prices))
	for symbol, price := range prices {
		out[symbol] = roundMoney(price)
	}
	return out
}
