package quote

import (
	"context"
	"sync"
	"time"

	"StockPulse/internal/model"

	"github.com/shopspring/decimal"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.Bar // newest first; generated from Price when nil
	Err   error

	mu    sync.Mutex
	calls int
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchIntraday has been invoked.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockFetcher) FetchIntraday(_ context.Context, symbol string) (*model.Intraday, error) {
	m.mu.Lock()
	m.calls++
	bars, err := m.Bars, m.Err
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if bars == nil {
		bars = generateMockBars(m.Price, 100, time.Now().Truncate(time.Minute))
	}
	if len(bars) == 0 {
		return nil, ErrMissingLatestBar
	}
	latest := bars[0]
	return &model.Intraday{
		Snapshot: model.QuoteSnapshot{
			Symbol:        symbol,
			Timestamp:     latest.Timestamp,
			Open:          latest.Open,
			PreviousClose: latest.Close,
		},
		Bars: bars,
	}, nil
}

func generateMockBars(basePrice float64, count int, newest time.Time) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 - float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Timestamp: newest.Add(-time.Duration(i) * time.Minute).Format(barTimeLayout),
			Open:      decimal.NewFromFloat(p * 0.999).Round(4),
			High:      decimal.NewFromFloat(p * 1.005).Round(4),
			Low:       decimal.NewFromFloat(p * 0.995).Round(4),
			Close:     decimal.NewFromFloat(p).Round(4),
			Volume:    1000000,
		}
	}
	return bars
}
