package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BearBump/PriceBox/config"
	"github.com/BearBump/PriceBox/internal/services/scanner"
)

type workerHTTPOpts struct {
	httpAddr string
	onListen func(httpAddr string)

	scanner *scanner.Scanner
	cfg     *config.Config
}

func runWorkerHTTPServer(ctx context.Context, opts workerHTTPOpts) error {
	if opts.httpAddr == "" {
		opts.httpAddr = ":8082"
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.scanner == nil {
			_, _ = w.Write([]byte(`{"error":"scanner not wired"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(opts.scanner.Stats())
	})

	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.cfg == nil {
			_, _ = w.Write([]byte(`{"error":"config not wired"}`))
			return
		}
		// Avoid dumping secrets; show only operational worker settings.
		out := map[string]any{
			"scanIntervalSeconds":   opts.cfg.PriceBox.WorkerScanIntervalSeconds,
			"rateLimitPerMinute":    opts.cfg.PriceBox.WorkerRateLimitPerMinute,
			"rateLimitsPerMinute":   opts.cfg.PriceBox.WorkerRateLimitsPerMinute,
			"targetCurrency":        opts.cfg.PriceBox.TargetCurrency,
			"shopEmulatorModules":   opts.cfg.PriceBox.ShopEmulatorModules,
			"telegramEnabled":       opts.cfg.PriceBox.TelegramEnabled,
			"alertStreamEnabled":    opts.cfg.PriceBox.AlertStreamEnabled,
			"lowestPriceTTLSeconds": opts.cfg.PriceBox.LowestPriceTTLSeconds,
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	r.Post("/trigger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.scanner == nil {
			_, _ = w.Write([]byte(`{"error":"scanner not wired"}`))
			return
		}
		opts.scanner.Trigger()
		_, _ = w.Write([]byte(`{"triggered":true}`))
	})

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	return srv.Serve(lis)
}
