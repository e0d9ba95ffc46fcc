package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/mandato360/internal/chat"
	"github.com/mmynk/mandato360/internal/config"
	"github.com/mmynk/mandato360/internal/fixtures"
	"github.com/mmynk/mandato360/internal/metrics"
	"github.com/mmynk/mandato360/internal/service"
	"github.com/mmynk/mandato360/internal/storage/memory"
	"github.com/mmynk/mandato360/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Parse(flag.NewFlagSet(os.Args[0], flag.ExitOnError), os.Args[1:])
	if err != nil {
		return err
	}

	// Setup structured logging
	logging.SetupWith(os.Stderr, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	f, err := fixtures.Load(cfg.FixturesPath)
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}
	slog.Info("Fixtures loaded",
		"path", cfg.FixturesPath,
		"contributors", len(f.Contributors),
		"financial_years", len(f.Financials),
	)

	// State lives in memory for the lifetime of the process.
	store := memory.New(f.Seed())
	defer store.Close()

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var completer chat.Completer
	if key := cfg.ChatAPIKey(); key != "" {
		gemini, err := chat.NewGeminiCompleter(ctx, key, cfg.ChatModel)
		if err != nil {
			return err
		}
		completer = gemini
		slog.Info("Consill IA online", "model", gemini.Model())
	} else {
		slog.Warn("Consill IA offline: no API key configured")
	}
	assistant := chat.NewAssistant(store, completer, chat.Options{
		SystemInstruction: f.Chat.SystemInstruction,
		WelcomeMessage:    f.Chat.WelcomeMessage,
		Timeout:           cfg.ChatTimeout,
		Metrics:           m,
	})

	staticDir := ""
	if cfg.StaticPath != "" {
		staticDir, err = filepath.Abs(cfg.StaticPath)
		if err != nil {
			return fmt.Errorf("failed to resolve static path: %w", err)
		}
		slog.Info("Serving static files", "path", staticDir)
	}

	handler := service.NewRouter(service.Services{
		Allocation: service.NewAllocationService(store, m),
		Financial:  service.NewFinancialService(store),
		Dashboard:  service.NewDashboardService(store, f.Roadmap, f.Competitors),
		Chat:       service.NewChatService(assistant),
	}, m, staticDir)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
