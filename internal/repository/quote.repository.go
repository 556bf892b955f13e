package repository

import (
	"fmt"
	"sync"
	"time"

	"notesim/internal/domain"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

const (
	// short lookback covers weekends and ordinary holidays; the long one is
	// the fallback for thinly-traded symbols and extended market closures
	shortLookbackDays = 5
	longLookbackDays  = 30

	quoteCacheTTL = time.Minute
)

type QuoteRepository interface {
	// LatestPrice returns the most recent daily adjusted close for the
	// symbol. The two-window retry lives here - the simulation engine never
	// retries anything.
	LatestPrice(symbol string) (float64, error)
	// History lists daily adjusted closes between start and end, ascending.
	History(symbol string, start, end time.Time) ([]domain.AssetPrice, error)
}

type cachedQuote struct {
	price     float64
	fetchedAt time.Time
}

type quoteRepositoryHandler struct {
	cache map[string]cachedQuote
	mu    *sync.RWMutex
}

func NewQuoteRepository() QuoteRepository {
	return &quoteRepositoryHandler{
		cache: map[string]cachedQuote{},
		mu:    &sync.RWMutex{},
	}
}

func (h *quoteRepositoryHandler) getFromCache(symbol string) *float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if q, ok := h.cache[symbol]; ok && time.Since(q.fetchedAt) < quoteCacheTTL {
		return &q.price
	}
	return nil
}

func (h *quoteRepositoryHandler) addToCache(symbol string, price float64) {
	h.mu.Lock()
	h.cache[symbol] = cachedQuote{price: price, fetchedAt: time.Now()}
	h.mu.Unlock()
}

func (h *quoteRepositoryHandler) LatestPrice(symbol string) (float64, error) {
	if cached := h.getFromCache(symbol); cached != nil {
		return *cached, nil
	}

	now := time.Now().UTC()
	price, found, err := lastClose(symbol, now.AddDate(0, 0, -shortLookbackDays), now)
	if err != nil {
		return 0, domain.PriceUnavailableError{Symbol: symbol, Err: err}
	}
	if !found {
		price, found, err = lastClose(symbol, now.AddDate(0, 0, -longLookbackDays), now)
		if err != nil {
			return 0, domain.PriceUnavailableError{Symbol: symbol, Err: err}
		}
	}
	if !found {
		return 0, domain.PriceUnavailableError{Symbol: symbol}
	}
	if price <= 0 {
		return 0, domain.PriceUnavailableError{Symbol: symbol, Err: fmt.Errorf("non-positive close %f", price)}
	}

	h.addToCache(symbol, price)
	return price, nil
}

// lastClose walks the daily bars in the window and keeps the newest one.
func lastClose(symbol string, start, end time.Time) (float64, bool, error) {
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	price := 0.0
	found := false
	for iter.Next() {
		price = iter.Bar().AdjClose.InexactFloat64()
		found = true
	}
	if err := iter.Err(); err != nil {
		return 0, false, fmt.Errorf("failed to get chart for %s: %w", symbol, err)
	}

	return price, found, nil
}

func (h *quoteRepositoryHandler) History(symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	out := []domain.AssetPrice{}
	for iter.Next() {
		out = append(out, domain.AssetPrice{
			Symbol: symbol,
			Date:   time.Unix(int64(iter.Bar().Timestamp), 0).UTC(),
			Price:  iter.Bar().AdjClose.InexactFloat64(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, domain.PriceUnavailableError{Symbol: symbol, Err: err}
	}

	return out, nil
}
