package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lifedash/internal/amqp"
	"lifedash/internal/config"
	apphttp "lifedash/internal/http"
	applog "lifedash/internal/log"
	"lifedash/internal/record"
	"lifedash/internal/service"
	"lifedash/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.DataBackend {
	case "sqlite":
		st, err = store.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		st = store.NewMemoryStoreFromDir(cfg.FixturesDir)
		logger.Info("Initialized memory backend", "fixtures", cfg.FixturesDir)
	}
	defer st.Close()

	// The change feed is optional; without it mutations simply are not
	// mirrored to the export worker.
	var svc *service.RecordService
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		svc = service.NewRecordService(st, amqpClient)
		logger.Info("Change feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		svc = service.NewRecordService(st, nil)
		logger.Info("Change feed disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		SummaryTTL:   cfg.SummaryTTL,
		SummarySlots: cfg.SummarySlots,
		Targets: record.NutritionTargets{
			Calories: int64(cfg.TargetCalories),
			ProteinG: int64(cfg.TargetProteinG),
			CarbsG:   int64(cfg.TargetCarbsG),
			FatG:     int64(cfg.TargetFatG),
		},
	}, svc)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting lifedash server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
