package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyperledger/fabric/common/flogging"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/dispatcher"
)

var logger = flogging.MustGetLogger("energytrading.main")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := dispatcher.LoadConfig(ctx)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %s", err)
	}
	flogging.ActivateSpec(cfg.LogLevel)

	source, err := dispatcher.NewFabricSource(cfg.Fabric)
	if err != nil {
		logger.Fatalf("Failed to connect to the event service: %s", err)
	}
	defer source.Close()

	registry := dispatcher.NewRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	dispatcher.NewServer(registry, cfg.WriteTimeout).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Dispatcher listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server stopped: %s", err)
			stop()
		}
	}()

	if err := dispatcher.New(registry, source).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("Dispatcher stopped: %s", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warningf("Graceful shutdown failed: %s", err)
	}
	logger.Info("Dispatcher stopped")
}
