package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/devaloi/meowww/internal/config"
	"github.com/devaloi/meowww/internal/handler"
	"github.com/devaloi/meowww/internal/hub"
	"github.com/devaloi/meowww/internal/logging"
	"github.com/devaloi/meowww/internal/metrics"
	"github.com/devaloi/meowww/internal/store"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		config.Usage(os.Stderr)
		os.Exit(2)
	}
	logger := logging.New(cfg.Env, os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var stats store.Store
	if cfg.DBPath != "" {
		s, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			logger.Error("store.open", "path", cfg.DBPath, "err", err)
			os.Exit(1)
		}
		defer s.Close()
		stats = s
	}

	m := metrics.New()
	h := hub.New(hub.Options{
		HistoryCapacity: cfg.HistoryCapacity,
		ResolveTimeout:  cfg.ResolveTimeout,
		PingInterval:    cfg.PingInterval,
		Observer:        m,
		Logger:          logger,
	})
	go h.Run()
	defer h.Stop()

	router := handler.NewRouter(handler.Options{
		Hub:           h,
		Store:         stats,
		Logger:        logger,
		Metrics:       m.Handler(),
		Workers:       cfg.Workers,
		WorkerBacklog: cfg.WorkerBacklog,
		CORSAllow:     cfg.CORSAllow,
		WriteWait:     cfg.WriteWait,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server.listening", "addr", cfg.Addr, "workers", cfg.Workers, "history", cfg.HistoryCapacity)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("server.shutdown.start")

	// Hijacked notification sockets are not tracked by Shutdown; they
	// close when the process exits.
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server.shutdown", "err", err)
	}
	logger.Info("server.shutdown.complete")
}
