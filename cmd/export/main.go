package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MacroPull/internal/di"
	"MacroPull/internal/export"
	"MacroPull/pkg/config"
	"MacroPull/pkg/util"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	eventTime := flag.String("event-time", "", "event time (RFC3339 or venue-local \"2006-01-02 15:04\"); latest event when empty")
	format := flag.String("format", "parquet", "output format: parquet, csv or json")
	out := flag.String("out", "reaction", "output path; the format extension is added when missing")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall export timeout")
	flag.Parse()

	saver := export.NewSaver(*format)
	if saver == nil {
		log.Fatalf("unsupported format %q (use parquet, csv or json)", *format)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	loc, err := util.LoadVenue(cfg.Venue)
	if err != nil {
		log.Fatalf("venue: %v", err)
	}

	var at time.Time
	if *eventTime != "" {
		t, ok := util.ParseVenueTime(*eventTime, loc)
		if !ok {
			log.Fatalf("invalid -event-time %q", *eventTime)
		}
		at = t
	}

	exporter, cleanup, err := di.InitializeExporter(cfg)
	if err != nil {
		log.Fatalf("exporter initialization failed: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	path, err := exporter.Export(ctx, at, saver, *out)
	if err != nil {
		log.Printf("export failed: %v", err)
		cleanup()
		os.Exit(1)
	}
	log.Printf("wrote %s", path)
}
