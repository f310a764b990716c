package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"guestflow/config"
	"guestflow/internal/analysis"
	"guestflow/internal/clients"
	"guestflow/internal/db"
	"guestflow/internal/logging"
	"guestflow/internal/sentiment"
	"guestflow/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.InitDB(ctx)
	if err != nil {
		slog.Error("[Main] failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	store := db.NewStore(pool)

	// The result cache is optional; without an address the batch driver
	// simply analyzes every item.
	var cache analysis.ResultCache
	if os.Getenv("VALKEY_INIT_ADDRESS") != "" {
		cache = clients.InitValkey()
		defer clients.CloseValkey()
	}

	handle := clients.GetCompletionHandle()
	analyzer := sentiment.NewAnalyzer(handle.Client, handle.Model, requestsPerSecond())
	batch := analysis.NewBatchProcessor(analyzer, store, cache, os.Getenv("LOCAL_FALLBACK") == "true")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: server.New(store, analyzer, batch).Router(),
	}

	go func() {
		slog.Info("[Main] listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] server stopped", slog.String("error", err.Error()))
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] shutdown failed", slog.String("error", err.Error()))
	}
}

func requestsPerSecond() float64 {
	// Self-hosted completion servers fall over without a ceiling.
	rps, err := strconv.ParseFloat(os.Getenv("COMPLETION_RPS"), 64)
	if err != nil || rps <= 0 {
		return 2
	}
	return rps
}
