// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Command server runs the Drillmap HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfukushima/drillmap/internal/api"
	"github.com/mfukushima/drillmap/internal/config"
	"github.com/mfukushima/drillmap/internal/logging"
	"github.com/mfukushima/drillmap/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	if _, created, err := st.EnsureDefaultScenario(); err != nil {
		return err
	} else if created {
		logging.Info().Msg("Created default scenario")
	}

	handler := api.NewHandler(st, cfg)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.NewRouter(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("store", cfg.Store.Path).
			Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	logging.Info().Msg("Server stopped")
	return nil
}
