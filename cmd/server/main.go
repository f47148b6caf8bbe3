// Package main - Entry point for the construction cost estimation server
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"construction-cost/api"
	"construction-cost/internal/bootstrap"
	"construction-cost/internal/config"
	"construction-cost/internal/logging"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Config file (json, yaml or toml)")
	addr := flag.String("addr", "", "Server address (overrides config)")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	rt, err := bootstrap.Build(cfg, logging.Logger, bootstrap.Options{WithStorage: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	server := api.NewServer(rt.Engine, rt.Estimates, version, logging.Logger)

	logging.Info("construction cost server starting",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("rates", rt.Rates.Current().Name),
		zap.String("comparables", cfg.Comparables.Driver),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("insight", cfg.Insight.Endpoint != ""),
	)

	return server.ListenAndServe(cfg.Server.Addr)
}
