package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockPulse/internal/config"
	"StockPulse/internal/display"
	"StockPulse/internal/metrics"
	"StockPulse/internal/notifier"
	"StockPulse/internal/prediction"
	"StockPulse/internal/quote"
	"StockPulse/internal/recorder"
	"StockPulse/internal/scheduler"
	"StockPulse/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockPulse starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	timeout := time.Duration(cfg.Quote.TimeoutSec) * time.Second
	var fetcher quote.Fetcher
	switch cfg.Quote.Provider {
	case "yahoo":
		fetcher = quote.NewYahooFetcher(cfg.Proxy, timeout)
	case "mock":
		fetcher = &quote.MockFetcher{Price: cfg.Quote.MockPrice}
	default:
		fetcher = quote.NewAlphaVantageFetcher(cfg.Quote.BaseURL, cfg.Quote.APIKey, cfg.Quote.Interval, cfg.Proxy, timeout)
	}
	log.Printf("[INFO] quote source: %s, symbol %s", fetcher.Name(), cfg.Quote.Symbol)

	// Init board
	owners, err := display.ParseOwners(cfg.Display.Owners)
	if err != nil {
		log.Fatalf("[FATAL] display owners: %v", err)
	}
	board := display.NewBoard(owners)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram notifier
	var tn notifier.Notifier = notifier.NoopNotifier{}
	var telegram *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		tn = telegram
	}

	var predictor scheduler.Predictor
	if cfg.PredictionEnabled() {
		predictor = prediction.NewClient(cfg.Prediction.URL)
		log.Printf("[INFO] prediction service: %s", cfg.Prediction.URL)
	}

	m := metrics.NewMetrics()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, fetcher, cfg.Quote.Symbol, board, predictor, tn, rec, m)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if telegram != nil {
		go telegram.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// HTTP server
	hub := web.NewHub(board, m)
	mux := http.NewServeMux()
	web.RegisterRoutes(mux, hub, board, m)
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}
	go func() {
		log.Printf("[INFO] dashboard listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] StockPulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] StockPulse stopped")
}
