// animeproxy is the offline caching gateway. It snapshots the app shell and
// API responses so the search client keeps working when upstream is down.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mizukaze554/AnimeSearch/internal/config"
	"github.com/mizukaze554/AnimeSearch/internal/offline"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("animeproxy %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting animeproxy", "version", Version)

	snaps, err := offline.OpenSnapshots(filepath.Join(config.DataPath(), "snapshots"))
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer snaps.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	gateway := offline.NewGateway(&cfg.Gateway, cfg.API.MetadataURL, snaps, httpClient, logger)

	// Install is best-effort at startup: when the shell origin is down we
	// still serve whatever an earlier install left behind.
	installCtx, cancelInstall := context.WithTimeout(context.Background(), 60*time.Second)
	if err := gateway.InstallShell(installCtx); err != nil {
		logger.Warn("shell install failed, serving existing snapshots", "error", err)
	}
	cancelInstall()

	if err := gateway.Activate(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Gateway.Listen,
		Handler:      gateway.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", cfg.Gateway.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("gateway stopped")
	return nil
}
