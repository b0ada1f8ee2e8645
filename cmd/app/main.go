package main

import (
	"flag"
	"log"
	"os"

	"MacroPull/internal/di"
	"MacroPull/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	mode := "live"
	if !cfg.HasFREDKey() {
		mode = "synthetic"
	}
	log.Printf("env=%s events=%s provider=%s archive=%s", cfg.Environment, mode, cfg.Market.Provider, cfg.Archive.Backend)

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		cleanup()
		os.Exit(1)
	}
}
