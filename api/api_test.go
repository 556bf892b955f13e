package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	mock_repository "notesim/internal/repository/mocks"
	"notesim/internal/domain"
	"notesim/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApiHandler(quoteRepository *mock_repository.MockQuoteRepository) ApiHandler {
	return ApiHandler{
		SimulationService: service.SimulationHandler{
			QuoteRepository:   quoteRepository,
			PeriodsPerYear:    4,
			TermYears:         3,
			DefaultVolatility: 0.10,
		},
		QuoteRepository: quoteRepository,
		Logger:          zap.NewNop().Sugar(),
	}
}

func doRequest(t *testing.T, handler ApiHandler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	handler.InitializeRouterEngine().ServeHTTP(w, req)
	return w
}

func TestApi_simulate(t *testing.T) {
	t.Run("deterministic flat run over http", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler := newTestApiHandler(mock_repository.NewMockQuoteRepository(ctrl))

		zero := 0.0
		w := doRequest(t, handler, "POST", "/simulate", map[string]any{
			"stocks": []map[string]any{
				{"ticker": "AAPL", "initial_price": 100},
				{"ticker": "MSFT", "initial_price": 200},
				{"ticker": "GOOG", "initial_price": 50},
			},
			"barrier":            0.5,
			"initial_investment": 10000,
			"coupon_rate":        0.08,
			"volatility":         zero,
		})

		require.Equal(t, 200, w.Code)

		var response simulateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

		require.True(t, response.Autocalled)
		require.Equal(t, "AUTOCALLED", response.FinalState)
		require.Len(t, response.QuarterlyResults, 4)
		require.Equal(t, map[string]float64{"AAPL": 50, "MSFT": 100, "GOOG": 25}, response.BarrierPrices)

		last := response.QuarterlyResults[3]
		require.NotNil(t, last.Redemption)
		require.Equal(t, 10000.0, *last.Redemption)
	})

	t.Run("fetches missing initial prices from the price source", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)
		quoteRepository.EXPECT().LatestPrice("GOOG").Return(50.0, nil)
		handler := newTestApiHandler(quoteRepository)

		w := doRequest(t, handler, "POST", "/simulate", map[string]any{
			"stocks": []map[string]any{
				{"ticker": "AAPL", "initial_price": 100},
				{"ticker": "MSFT", "initial_price": 200},
				{"ticker": "GOOG"},
			},
			"barrier":            0.5,
			"initial_investment": 10000,
			"coupon_rate":        0.08,
			"volatility":         0,
		})

		require.Equal(t, 200, w.Code)

		var response simulateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, 50.0, response.InitialPrices["GOOG"])
	})

	t.Run("wrong underlying count is a client error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler := newTestApiHandler(mock_repository.NewMockQuoteRepository(ctrl))

		w := doRequest(t, handler, "POST", "/simulate", map[string]any{
			"stocks": []map[string]any{
				{"ticker": "AAPL", "initial_price": 100},
				{"ticker": "MSFT", "initial_price": 200},
			},
			"barrier":            0.5,
			"initial_investment": 10000,
			"coupon_rate":        0.08,
		})

		require.Equal(t, 400, w.Code)
	})

	t.Run("price source failure is a bad gateway", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)
		quoteRepository.EXPECT().LatestPrice("NOPE").Return(
			0.0,
			domain.PriceUnavailableError{Symbol: "NOPE"},
		)
		handler := newTestApiHandler(quoteRepository)

		w := doRequest(t, handler, "POST", "/simulate", map[string]any{
			"stocks": []map[string]any{
				{"ticker": "NOPE"},
				{"ticker": "MSFT", "initial_price": 200},
				{"ticker": "GOOG", "initial_price": 50},
			},
			"barrier":            0.5,
			"initial_investment": 10000,
			"coupon_rate":        0.08,
		})

		require.Equal(t, 502, w.Code)
	})
}

func TestApi_simulateEnsemble(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := newTestApiHandler(mock_repository.NewMockQuoteRepository(ctrl))

	w := doRequest(t, handler, "POST", "/simulate/ensemble", map[string]any{
		"stocks": []map[string]any{
			{"ticker": "AAPL", "initial_price": 100},
			{"ticker": "MSFT", "initial_price": 200},
			{"ticker": "GOOG", "initial_price": 50},
		},
		"barrier":            0.5,
		"initial_investment": 10000,
		"coupon_rate":        0.08,
		"volatility":         0,
		"runs":               25,
	})

	require.Equal(t, 200, w.Code)

	var response simulateEnsembleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 25, response.Runs)
	require.Equal(t, 1.0, response.AutocallProbability)
	require.Equal(t, 800.0, response.MeanTotalCoupons)
}

func TestApi_stock(t *testing.T) {
	t.Run("returns the live price", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)
		quoteRepository.EXPECT().LatestPrice("AAPL").Return(123.45, nil)
		handler := newTestApiHandler(quoteRepository)

		w := doRequest(t, handler, "GET", "/stock?ticker=AAPL", nil)
		require.Equal(t, 200, w.Code)

		var response stockResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, stockResponse{Ticker: "AAPL", Price: 123.45}, response)
	})

	t.Run("missing ticker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler := newTestApiHandler(mock_repository.NewMockQuoteRepository(ctrl))

		w := doRequest(t, handler, "GET", "/stock", nil)
		require.Equal(t, 400, w.Code)
	})

	t.Run("unavailable price", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)
		quoteRepository.EXPECT().LatestPrice("NOPE").Return(
			0.0,
			domain.PriceUnavailableError{Symbol: "NOPE"},
		)
		handler := newTestApiHandler(quoteRepository)

		w := doRequest(t, handler, "GET", "/stock?ticker=NOPE", nil)
		require.Equal(t, 502, w.Code)
	})
}
