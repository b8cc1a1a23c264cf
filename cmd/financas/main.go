package main

import (
	"context"
	"os"

	"financas/internal/cli"
	apphttp "financas/internal/http"
	"financas/internal/log"
	"financas/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(log.New(log.DefaultConfig()), "Invalid configuration", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)

	ctx := context.Background()
	store, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to open data backend", err)
	}
	logger.Info("Data backend ready", log.FieldBackend, cfg.DataBackend)

	entries := services.NewEntryService(store.Store, logger)
	reports := services.NewReportService(entries, logger)

	srv := apphttp.NewServer(apphttp.ServerConfig{
		Addr:               cfg.Addr(),
		Prefix:             cfg.APIPrefix,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              store.Ping,
		Logger:             logger,
	}, entries, reports)

	logger.Info("Starting financas server",
		log.FieldOperation, log.OpStartup,
		"addr", srv.Addr,
		"prefix", cfg.APIPrefix,
		log.FieldBackend, cfg.DataBackend)
	if err := cli.RunServer(ctx, logger, srv, cfg.ShutdownTimeout, store.Close); err != nil {
		cli.Fatal(logger, "Server stopped with errors", err)
	}
}
