package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"StockPulse/internal/display"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/prediction"
	"StockPulse/internal/quote"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func bar(ts string, open, close float64) model.Bar {
	return model.Bar{
		Timestamp: ts,
		Open:      decimal.NewFromFloat(open),
		High:      decimal.NewFromFloat(open),
		Low:       decimal.NewFromFloat(close),
		Close:     decimal.NewFromFloat(close),
		Volume:    1000,
	}
}

type fakePredictor struct {
	price float64
	err   error
}

func (f *fakePredictor) Predict(_ context.Context, symbol string) (*model.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Prediction{Symbol: symbol, PredictedPrice: f.price}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return nil
}

func newTestScheduler(f quote.Fetcher, p Predictor, owners map[display.Field]display.Source) (*Scheduler, *recordingNotifier) {
	if owners == nil {
		owners = display.DefaultOwners()
	}
	n := &recordingNotifier{}
	s := NewScheduler(context.Background(), f, "AAPL", display.NewBoard(owners), p, n, nil, metrics.NewMetrics())
	return s, n
}

func TestRefreshUpdatesBoard(t *testing.T) {
	f := &quote.MockFetcher{Bars: []model.Bar{
		bar("2024-01-05 16:02:00", 101.00, 100.00),
		bar("2024-01-05 16:01:00", 100.50, 100.60),
	}}
	s, n := newTestScheduler(f, nil, nil)

	s.RefreshNow()

	require.Equal(t, "AAPL", s.Board.Text(display.FieldStockName))
	require.Equal(t, "Price: $101.00 (1.00%)", s.Board.Text(display.FieldStockPrice))
	require.Equal(t, "Last updated: 4:02:00 PM", s.Board.Text(display.FieldLastUpdated))
	require.Equal(t, "Buy: the stock is trending upwards", s.Board.Text(display.FieldSuggestion))

	c := s.Renderer.Current()
	require.NotNil(t, c)
	require.Len(t, c.Options.Series, 1)
	data := c.Options.Series[0].Data
	require.Len(t, data, 2)
	require.Equal(t, "2024-01-05 16:01:00", data[0].X)
	require.Equal(t, "2024-01-05 16:02:00", data[1].X)

	require.Len(t, n.sent, 1)
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.RefreshTicks))
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.Suggestions.WithLabelValues("BUY")))
}

func TestRefreshDownTick(t *testing.T) {
	f := &quote.MockFetcher{Bars: []model.Bar{bar("2024-01-05 09:30:00", 99.00, 100.00)}}
	s, _ := newTestScheduler(f, nil, nil)

	s.RefreshNow()

	require.Equal(t, "Price: $99.00 (-1.00%)", s.Board.Text(display.FieldStockPrice))
	require.Equal(t, "Last updated: 9:30:00 AM", s.Board.Text(display.FieldLastUpdated))
	require.Equal(t, "Sell: the stock is trending downwards", s.Board.Text(display.FieldSuggestion))
}

func TestRefreshFailureLeavesBoard(t *testing.T) {
	f := &quote.MockFetcher{Err: quote.ErrMalformedResponse}
	s, n := newTestScheduler(f, nil, nil)

	s.RefreshNow()

	snap := s.Board.Snapshot()
	require.Empty(t, snap.Texts)
	require.Nil(t, snap.Chart)
	require.Zero(t, snap.Seq)
	require.Empty(t, n.sent)
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.RefreshFailures.WithLabelValues("malformed")))
}

func TestRefreshFailureKeepsPreviousValues(t *testing.T) {
	f := &quote.MockFetcher{Bars: []model.Bar{bar("2024-01-05 16:02:00", 101.00, 100.00)}}
	s, _ := newTestScheduler(f, nil, nil)
	s.RefreshNow()
	before := s.Board.Snapshot()

	f.Err = quote.ErrProviderError
	s.RefreshNow()

	after := s.Board.Snapshot()
	require.Equal(t, before.Texts, after.Texts)
	require.Equal(t, before.Seq, after.Seq)
	require.Equal(t, 0, s.Renderer.Current().Revision)
}

func TestRefreshReusesChart(t *testing.T) {
	f := &quote.MockFetcher{Bars: []model.Bar{bar("2024-01-05 16:02:00", 101.00, 100.00)}}
	s, _ := newTestScheduler(f, nil, nil)

	s.RefreshNow()
	first := s.Renderer.Current().ID

	f.Bars = []model.Bar{
		bar("2024-01-05 16:03:00", 102.00, 101.50),
		bar("2024-01-05 16:02:00", 101.00, 100.00),
	}
	s.RefreshNow()

	c := s.Renderer.Current()
	require.Equal(t, first, c.ID)
	require.Equal(t, 1, c.Revision)
	require.Len(t, c.Options.Series[0].Data, 2)
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.ChartRenders.WithLabelValues("create")))
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.ChartRenders.WithLabelValues("update")))
}

func TestNotifyOnlyOnFlip(t *testing.T) {
	f := &quote.MockFetcher{Bars: []model.Bar{bar("2024-01-05 16:02:00", 101.00, 100.00)}}
	s, n := newTestScheduler(f, nil, nil)

	s.RefreshNow()
	s.RefreshNow()
	require.Len(t, n.sent, 1)

	f.Bars = []model.Bar{bar("2024-01-05 16:03:00", 100.00, 100.00)}
	s.RefreshNow()
	require.Len(t, n.sent, 2)
	require.Contains(t, n.sent[1], "Sell")
}

func TestPredictionDefaultOwnership(t *testing.T) {
	s, _ := newTestScheduler(&quote.MockFetcher{Price: 100}, &fakePredictor{price: 189.4231}, nil)

	s.PredictNow()

	require.Equal(t, "Predicted Price: $189.42", s.Board.Text(display.FieldPrediction))
	require.Empty(t, s.Board.Text(display.FieldStockPrice))
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.Predictions.WithLabelValues("ok")))
}

func TestPredictionOwnsQuoteFields(t *testing.T) {
	owners := display.DefaultOwners()
	owners[display.FieldStockName] = display.SourcePrediction
	owners[display.FieldStockPrice] = display.SourcePrediction
	s, _ := newTestScheduler(&quote.MockFetcher{Price: 100}, &fakePredictor{price: 150}, owners)

	s.PredictNow()

	require.Equal(t, "AAPL", s.Board.Text(display.FieldStockName))
	require.Equal(t, "Predicted Price: $150.00", s.Board.Text(display.FieldStockPrice))
}

func TestPredictionFailureRaisesAlert(t *testing.T) {
	p := &fakePredictor{err: &prediction.ServiceError{StatusCode: 500, Message: "model not loaded"}}
	s, _ := newTestScheduler(&quote.MockFetcher{Price: 100}, p, nil)
	events, cancel := s.Board.Subscribe(4)
	defer cancel()

	s.PredictNow()

	select {
	case e := <-events:
		require.Equal(t, display.EventAlert, e.Type)
		require.Equal(t, "Error: model not loaded", e.Text)
	case <-time.After(time.Second):
		t.Fatal("no alert published")
	}
	require.Empty(t, s.Board.Text(display.FieldPrediction))
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.Predictions.WithLabelValues("error")))
}

func TestPredictionTransportFailureAlert(t *testing.T) {
	p := &fakePredictor{err: errors.New("connection refused")}
	s, _ := newTestScheduler(&quote.MockFetcher{Price: 100}, p, nil)
	events, cancel := s.Board.Subscribe(4)
	defer cancel()

	s.PredictNow()

	e := <-events
	require.Equal(t, "Error: connection refused", e.Text)
}

func TestHandleCommand(t *testing.T) {
	f := &quote.MockFetcher{Bars: []model.Bar{bar("2024-01-05 16:02:00", 101.00, 100.00)}}
	s, _ := newTestScheduler(f, nil, nil)

	require.Equal(t, "No data yet.", s.HandleCommand("/quote"))
	s.RefreshNow()
	require.Contains(t, s.HandleCommand("/quote"), "Price: $101.00 (1.00%)")
	require.Equal(t, "Prediction is disabled.", s.HandleCommand("/predict"))
	require.True(t, strings.HasPrefix(s.HandleCommand("/help"), "Commands:"))
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s, _ := newTestScheduler(&quote.MockFetcher{Price: 100}, nil, nil)
	require.Error(t, s.Register("every five minutes"))
	require.NoError(t, s.Register("@every 300s"))
}

func TestStartRunsImmediately(t *testing.T) {
	f := &quote.MockFetcher{Price: 100}
	p := &fakePredictor{price: 120}
	s, _ := newTestScheduler(f, p, nil)
	require.NoError(t, s.Register("@every 300s"))

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return f.Calls() >= 1 && s.Board.Text(display.FieldPrediction) != ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFormatLastUpdatedFallback(t *testing.T) {
	require.Equal(t, "Last updated: not-a-time", FormatLastUpdated("not-a-time"))
	require.Equal(t, "Last updated: 12:00:00 PM", FormatLastUpdated("2024-01-05 12:00:00"))
}

func TestPredictionFailureVisibleToLateViewer(t *testing.T) {
	p := &fakePredictor{err: errors.New("connection refused")}
	s, _ := newTestScheduler(&quote.MockFetcher{Price: 100}, p, nil)

	s.PredictNow()

	snap, _, cancel := s.Board.SubscribeWithSnapshot(8)
	defer cancel()
	require.Equal(t, "Error: connection refused", snap.Alert)
}

func TestConcurrentRefreshes(t *testing.T) {
	f := &quote.MockFetcher{Bars: []model.Bar{
		bar("2024-01-05 16:02:00", 101.00, 100.00),
		bar("2024-01-05 16:01:00", 100.50, 100.60),
	}}
	s, _ := newTestScheduler(f, nil, nil)

	const ticks = 50
	var wg sync.WaitGroup
	for i := 0; i < ticks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RefreshNow()
		}()
	}
	wg.Wait()

	require.Equal(t, ticks, f.Calls())
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.ChartRenders.WithLabelValues("create")))
	require.Equal(t, float64(ticks-1), testutil.ToFloat64(s.Metrics.ChartRenders.WithLabelValues("update")))
	require.Equal(t, ticks-1, s.Renderer.Current().Revision)
	require.Equal(t, "Price: $101.00 (1.00%)", s.Board.Text(display.FieldStockPrice))
}
