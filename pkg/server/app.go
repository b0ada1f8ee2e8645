package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MacroPull/internal/usecase"
	"MacroPull/pkg/config"
	xhttp "MacroPull/pkg/http"
	pkgkafka "MacroPull/pkg/kafka"
	"MacroPull/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	log      *logger.Logger
	server   *xhttp.Server
	catalog  *usecase.EventCatalog
	archiver *usecase.ReactionArchiver
	consumer *pkgkafka.Consumer
	handler  pkgkafka.MessageHandler
}

// New creates a new App. consumer and handler may be nil when the archive
// consumer is disabled.
func New(
	cfg *config.Config,
	log *logger.Logger,
	server *xhttp.Server,
	catalog *usecase.EventCatalog,
	archiver *usecase.ReactionArchiver,
	consumer *pkgkafka.Consumer,
	handler pkgkafka.MessageHandler,
) *App {
	return &App{
		cfg:      cfg,
		log:      log.Component("app"),
		server:   server,
		catalog:  catalog,
		archiver: archiver,
		consumer: consumer,
		handler:  handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// warm the event cache so the first request does not pay for a rebuild
	go func() {
		start := time.Now()
		events := a.catalog.Latest(ctx, 1)
		a.log.Info("event cache warmed",
			logger.Int("latest", len(events)),
			logger.Duration("took", time.Since(start)))
	}()

	if a.consumer != nil && a.handler != nil {
		a.consumer.RegisterHandler(a.handler)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", logger.Error(err))
			return err
		}
		a.log.Info("archive consumer started",
			logger.String("topic", a.handler.Topic()),
			logger.Strings("brokers", a.cfg.Kafka.Brokers))
	}

	if err := a.server.Start(); err != nil {
		a.log.Error("http server start error", logger.Error(err))
		return err
	}
	a.log.Info("macropull started",
		logger.String("env", a.cfg.Environment),
		logger.String("provider", a.cfg.Market.Provider),
		logger.String("archive", a.archiver.Backend()),
		logger.Bool("fred_key", a.cfg.HasFREDKey()))

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the HTTP server first so no new reactions are archived, then
// drains the consumer and closes the archive.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", logger.Error(err))
		}
	}
	a.archiver.Close()

	a.log.Info("shutdown complete")
	return nil
}
