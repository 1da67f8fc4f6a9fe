package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paper-trader-go/internal/config"
	"paper-trader-go/internal/database"
	"paper-trader-go/internal/logger"
	"paper-trader-go/internal/marketdata"
	"paper-trader-go/internal/server"
	"paper-trader-go/internal/simulator"
	"paper-trader-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	st := store.New(db)
	if err := st.EnsureBalance(cfg.Trading.InitialBalance); err != nil {
		log.Fatal("Failed to seed balance", zap.Error(err))
	}
	sim := simulator.NewService(st, log)

	// Market data gateway
	market, err := marketdata.NewClient(&cfg.MarketData, log)
	if err != nil {
		log.Fatal("Failed to create market data client", zap.Error(err))
	}

	s := server.NewServer(sim, market, log, cfg.Server.CORSOrigin, cfg.MarketData.SnapshotDepth)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: s.R}

	go func() {
		log.Info("Starting web server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Shutdown failed", zap.Error(err))
	}
	log.Info("Shutdown complete")
}
