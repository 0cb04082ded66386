package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/BearBump/PriceBox/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sc, closeFn, err := buildPriceWorker(ctx, cfg, defaultWorkerFactories())
	if err != nil {
		panic(err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	go func() {
		err := runWorkerHTTPServer(ctx, workerHTTPOpts{
			httpAddr: cfg.PriceBox.WorkerHTTPAddr,
			onListen: func(addr string) {
				slog.Info("worker admin http listening", "addr", addr)
			},
			scanner: sc,
			cfg:     cfg,
		})
		if err != nil && err != http.ErrServerClosed {
			slog.Error("worker admin http", "error", err.Error())
		}
	}()

	if err := sc.Run(ctx); err != nil && err != context.Canceled {
		panic(err)
	}
}
