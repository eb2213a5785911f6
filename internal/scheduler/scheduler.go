package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"StockPulse/internal/calculator"
	"StockPulse/internal/chart"
	"StockPulse/internal/display"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/notifier"
	"StockPulse/internal/prediction"
	"StockPulse/internal/quote"
	"StockPulse/internal/recorder"
	"StockPulse/internal/strategy"

	"github.com/robfig/cron/v3"
)

// Predictor asks a prediction service for a price.
type Predictor interface {
	Predict(ctx context.Context, symbol string) (*model.Prediction, error)
}

// Scheduler runs the refresh pipeline on a fixed schedule. Ticks are not
// serialized: a slow fetch can overlap the next tick.
type Scheduler struct {
	Cron      *cron.Cron
	Fetcher   quote.Fetcher
	Symbol    string
	Board     *display.Board
	Renderer  *chart.Renderer
	Predictor Predictor // nil disables the prediction pipeline
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Ctx       context.Context

	mu         sync.Mutex
	lastAction model.Action
}

// NewScheduler creates a new Scheduler. The chart renderer draws into board.
func NewScheduler(ctx context.Context, fetcher quote.Fetcher, symbol string, board *display.Board, predictor Predictor, tn notifier.Notifier, rec recorder.Recorder, m *metrics.Metrics) *Scheduler {
	if tn == nil {
		tn = notifier.NoopNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if m == nil {
		m = metrics.NewMetrics()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Fetcher:   fetcher,
		Symbol:    symbol,
		Board:     board,
		Renderer:  chart.NewRenderer(display.RegionChart, board),
		Predictor: predictor,
		Notifier:  tn,
		Recorder:  rec,
		Metrics:   m,
		Ctx:       ctx,
	}
}

// Register adds the refresh task on a cron schedule such as "@every 300s".
func (s *Scheduler) Register(schedule string) error {
	if _, err := s.Cron.AddFunc(schedule, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start runs one refresh and the one-shot prediction immediately, then
// starts the cron scheduler. The two pipelines are not ordered.
func (s *Scheduler) Start() {
	go s.refreshTask()
	if s.Predictor != nil {
		go s.predictionTask()
	}
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler. Running ticks are not waited for.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RefreshNow executes one refresh tick synchronously.
func (s *Scheduler) RefreshNow() {
	s.refreshTask()
}

// PredictNow executes the prediction pipeline synchronously.
func (s *Scheduler) PredictNow() {
	if s.Predictor == nil {
		return
	}
	s.predictionTask()
}

func (s *Scheduler) refreshTask() {
	s.Metrics.RefreshTicks.Inc()

	start := time.Now()
	intraday, err := s.Fetcher.FetchIntraday(s.Ctx, s.Symbol)
	s.Metrics.QuoteFetchDur.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := quote.Kind(err)
		log.Printf("[ERROR] refresh %s via %s (%s): %v", s.Symbol, s.Fetcher.Name(), kind, err)
		s.Metrics.RefreshFailures.WithLabelValues(kind).Inc()
		if err := s.Recorder.RecordFailure(&recorder.FailureEvent{
			Symbol: s.Symbol, Kind: kind, Detail: err.Error(),
		}); err != nil {
			log.Printf("[ERROR] record failure: %v", err)
		}
		return
	}

	snap := intraday.Snapshot
	change := calculator.PercentChange(snap.Open, snap.PreviousClose)
	priceText := FormatPriceLine(snap.Open, change)

	s.Board.SetTexts(display.SourceQuote,
		display.TextUpdate{Field: display.FieldStockName, Text: s.Symbol},
		display.TextUpdate{Field: display.FieldStockPrice, Text: priceText},
		display.TextUpdate{Field: display.FieldLastUpdated, Text: FormatLastUpdated(snap.Timestamp)},
	)

	mode := "update"
	if _, created := s.Renderer.Render(chart.Points(intraday.Bars)); created {
		mode = "create"
	}
	s.Metrics.ChartRenders.WithLabelValues(mode).Inc()

	suggestion := strategy.Suggest(change)
	s.Board.SetText(display.SourceQuote, display.FieldSuggestion, suggestion.Text)

	open := snap.Open.InexactFloat64()
	s.Metrics.LastPrice.WithLabelValues(s.Symbol).Set(open)
	s.Metrics.PercentChange.WithLabelValues(s.Symbol).Set(change)
	s.Metrics.Suggestions.WithLabelValues(string(suggestion.Action)).Inc()
	log.Printf("[INFO] %s %s, %s", s.Symbol, priceText, suggestion.Action)

	if err := s.Recorder.RecordQuote(&recorder.QuoteEvent{
		Symbol:        s.Symbol,
		BarTime:       snap.Timestamp,
		Open:          open,
		PreviousClose: snap.PreviousClose.InexactFloat64(),
		PercentChange: change,
		Action:        string(suggestion.Action),
		Bars:          len(intraday.Bars),
	}); err != nil {
		log.Printf("[ERROR] record quote: %v", err)
	}

	s.mu.Lock()
	flipped := s.lastAction != suggestion.Action
	s.lastAction = suggestion.Action
	s.mu.Unlock()
	if flipped {
		s.trySend(notifier.FormatSuggestion(s.Symbol, priceText, snap.Timestamp, suggestion))
	}
}

func (s *Scheduler) predictionTask() {
	p, err := s.Predictor.Predict(s.Ctx, s.Symbol)
	if err != nil {
		log.Printf("[ERROR] prediction %s: %v", s.Symbol, err)
		s.Metrics.Predictions.WithLabelValues("error").Inc()
		msg := err.Error()
		var serr *prediction.ServiceError
		if errors.As(err, &serr) {
			msg = serr.Message
		}
		if err := s.Recorder.RecordPrediction(&recorder.PredictionEvent{Symbol: s.Symbol, Error: msg}); err != nil {
			log.Printf("[ERROR] record prediction: %v", err)
		}
		s.Board.Alert(display.SourcePrediction, "Error: "+msg)
		return
	}

	s.Metrics.Predictions.WithLabelValues("ok").Inc()
	priceText := FormatPrediction(p.PredictedPrice)
	var updates []display.TextUpdate
	for _, f := range s.Board.OwnedFields(display.SourcePrediction) {
		switch f {
		case display.FieldStockName:
			updates = append(updates, display.TextUpdate{Field: f, Text: p.Symbol})
		case display.FieldStockPrice, display.FieldPrediction:
			updates = append(updates, display.TextUpdate{Field: f, Text: priceText})
		}
	}
	s.Board.SetTexts(display.SourcePrediction, updates...)
	log.Printf("[INFO] prediction %s: %s", p.Symbol, priceText)

	if err := s.Recorder.RecordPrediction(&recorder.PredictionEvent{
		Symbol: p.Symbol, PredictedPrice: p.PredictedPrice,
	}); err != nil {
		log.Printf("[ERROR] record prediction: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/quote":
		return notifier.FormatBoard(s.Board.Snapshot())
	case "/refresh":
		go s.refreshTask()
		return "Refreshing " + s.Symbol + "..."
	case "/predict":
		if s.Predictor == nil {
			return "Prediction is disabled."
		}
		go s.predictionTask()
		return "Requesting prediction for " + s.Symbol + "..."
	default:
		return "Commands:\n• /quote\n• /refresh\n• /predict"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
