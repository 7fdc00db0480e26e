package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"RenewraOracle/internal/api"
	"RenewraOracle/internal/config"
	"RenewraOracle/internal/logger"
	"RenewraOracle/internal/metrics"
	"RenewraOracle/internal/nav"
	"RenewraOracle/internal/notifier"
	"RenewraOracle/internal/portfolio"
	"RenewraOracle/internal/recorder"
	"RenewraOracle/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("load .env: %v", err)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation: %v", err)
	}
	if err := logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		logger.Fatal("init logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("RenewraOracle starting...")

	// Portfolio
	src := portfolio.NewSource(cfg.Portfolio.Path, cfg.Portfolio.APIKey, cfg.Proxy)
	store, err := portfolio.Open(src)
	if err != nil {
		logger.Fatal("open portfolio: %v", err)
	}

	// Engine
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := nav.NewEngine(store, navDefaults(cfg), rand.New(rand.NewSource(seed)))
	metrics.OperationalProjects.Set(float64(store.Snapshot().OperationalCount()))
	metrics.MonthlyYield.Set(float64(engine.TotalMonthlyYield()))

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telegram is optional
	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	sched := scheduler.NewScheduler(ctx, engine, n, rec)
	if err := sched.RegisterAll(cfg.Schedule.NavCron, cfg.Schedule.SimulateCron, cfg.Schedule.ReloadCron); err != nil {
		logger.Fatal("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	// HTTP API
	srv := api.NewServer(engine, sched)
	if cfg.MetricsEnabled() {
		srv.EnableMetrics()
	}
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP API listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server: %v", err)
		}
	}()

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, publishing NAV now")
		go sched.PublishNav(scheduler.TriggerStartup)
	}

	logger.Info("RenewraOracle is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown: %v", err)
	}
	logger.Info("RenewraOracle stopped")
}

// navDefaults fills the engine defaults from config. Load has already
// applied the standard values to any key the file left out.
func navDefaults(cfg *config.Config) nav.Defaults {
	d := nav.StandardDefaults()
	sd := cfg.Simulation.Defaults
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&d.DegradationRate, sd.DegradationRate)
	set(&d.TaxRate, sd.TaxRate)
	set(&d.PPAPricePerKWh, sd.PPAPricePerKWh)
	set(&d.PPAPricePerMWh, sd.PPAPricePerMWh)
	set(&d.AnnualCycles, sd.AnnualCycles)
	return d
}
