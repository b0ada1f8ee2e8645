package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"MacroPull/internal/domain/repository"
	"MacroPull/internal/export"
	"MacroPull/internal/handler/api"
	internalrepo "MacroPull/internal/repository"
	"MacroPull/internal/service/fred"
	"MacroPull/internal/service/polygon"
	"MacroPull/internal/service/ratelimit"
	"MacroPull/internal/service/yahoo"
	"MacroPull/internal/services/returns"
	"MacroPull/internal/services/transform"
	"MacroPull/internal/usecase"
	"MacroPull/pkg/cache"
	pkgch "MacroPull/pkg/clickhouse"
	"MacroPull/pkg/config"
	xhttp "MacroPull/pkg/http"
	pkgkafka "MacroPull/pkg/kafka"
	"MacroPull/pkg/logger"
	"MacroPull/pkg/metrics"
	"MacroPull/pkg/server"
	"MacroPull/pkg/util"
)

// ProvideLogger creates the root logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&cfg.Log)
}

// ProvideVenue loads the venue timezone.
func ProvideVenue(cfg *config.Config) (*time.Location, error) {
	return util.LoadVenue(cfg.Venue)
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideEconomicSource returns the FRED client, or nil without a key so the
// catalog runs on synthetic events.
func ProvideEconomicSource(cfg *config.Config, m repository.Metrics) repository.EconomicSource {
	if !cfg.HasFREDKey() {
		return nil
	}
	client := fred.New(
		xhttp.NewClient(xhttp.WithTimeout(cfg.FRED.Timeout)),
		cfg.FRED.BaseURL,
		cfg.FRED.APIKey,
		ratelimit.PerMinute(cfg.FRED.RequestsPerMinute),
	)
	return internalrepo.NewInstrumentedEconomicSource(client, "fred", cfg.FRED.Timeout, m)
}

// ProvideBarSource selects the market data provider.
func ProvideBarSource(cfg *config.Config, loc *time.Location) (repository.BarSource, error) {
	hc := xhttp.NewClient(xhttp.WithTimeout(cfg.Market.Timeout))
	limiter := ratelimit.PerSecond(cfg.Market.RequestsPerSecond)
	switch cfg.Market.Provider {
	case "yahoo":
		return yahoo.New(hc, cfg.Market.Yahoo.BaseURL, limiter, loc), nil
	case "polygon":
		return polygon.New(hc, cfg.Market.Polygon.BaseURL, cfg.Market.Polygon.APIKey, limiter, loc), nil
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Market.Provider)
	}
}

// ProvidePriceCache builds the bar cache: memory in front of Redis when
// Redis is enabled, memory only otherwise, nil when caching is off.
func ProvidePriceCache(cfg *config.Config, log *logger.Logger) (cache.Service, func(), error) {
	if !cfg.Market.Cache.Enabled {
		return nil, func() {}, nil
	}
	if !cfg.Redis.Enabled {
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Market.Cache.MaxSize))
		return mc, func() { _ = mc.Close() }, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Market.Cache.MaxSize),
		cache.WithLayeredMemoryTTL(min(time.Minute, cfg.Market.Cache.TTL)),
	)
	log.Info("price cache using redis", logger.String("addr", cfg.Redis.Addr))
	return lc, func() { _ = lc.Close() }, nil
}

// ProvidePriceFetcher wraps the bar source with interval policy and caching.
func ProvidePriceFetcher(
	source repository.BarSource,
	store cache.Service,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
	loc *time.Location,
) repository.PriceFetcher {
	return internalrepo.NewPriceFetcher(source, store, m, log, internalrepo.PriceFetcherConfig{
		Timeout:  cfg.Market.Timeout,
		CacheTTL: cfg.Market.Cache.TTL,
		Location: loc,
	})
}

// ProvideClickHouseClient connects to ClickHouse when the archive store or
// the archive consumer needs it; otherwise it returns nil.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Archive.Backend != usecase.ArchiveClickHouse && !cfg.Archive.Consume {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideArchiveStore creates the ClickHouse reaction store and its schema.
func ProvideArchiveStore(client *pkgch.Client, log *logger.Logger) (repository.ArchiveStore, error) {
	if client == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseArchive(client, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideReactionPublisher creates the Kafka snapshot publisher for the
// kafka archive backend.
func ProvideReactionPublisher(cfg *config.Config, reg *prometheus.Registry) (repository.ReactionArchive, error) {
	if cfg.Archive.Backend != usecase.ArchiveKafka {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaArchive(producer, cfg.Kafka.Topic), nil
}

// ProvideArchiver routes computed reactions to the configured backend.
func ProvideArchiver(
	pub repository.ReactionArchive,
	store repository.ArchiveStore,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.ReactionArchiver {
	return usecase.NewReactionArchiver(pub, store, m, log, cfg.Archive.Backend)
}

// ProvideEventCatalog creates the cached macro event catalog.
func ProvideEventCatalog(
	source repository.EconomicSource,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
	loc *time.Location,
) *usecase.EventCatalog {
	return usecase.NewEventCatalog(source, transform.New(), m, log, usecase.EventCatalogConfig{
		CacheTTL:         cfg.Events.CacheTTL,
		ObservationLimit: cfg.FRED.ObservationLimit,
		MaxPerIndicator:  cfg.Events.MaxPerIndicator,
		SyntheticMonths:  cfg.Events.SyntheticMonths,
		Location:         loc,
	})
}

// ProvideReactionAggregator creates the cross-asset reaction use case.
func ProvideReactionAggregator(
	prices repository.PriceFetcher,
	archiver *usecase.ReactionArchiver,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
	loc *time.Location,
) *usecase.ReactionAggregator {
	return usecase.NewReactionAggregator(prices, returns.New(loc), archiver, m, log, usecase.ReactionConfig{
		Workers: cfg.Market.Workers,
		Before:  cfg.Market.Before,
		After:   cfg.Market.After,
	})
}

// ProvideDashboard creates the chart/table use case.
func ProvideDashboard(reactions *usecase.ReactionAggregator, prices repository.PriceFetcher) *usecase.Dashboard {
	return usecase.NewDashboard(reactions, prices)
}

// ProvideHTTPHandler wires the API routes and readiness probes.
func ProvideHTTPHandler(
	log *logger.Logger,
	catalog *usecase.EventCatalog,
	reactions *usecase.ReactionAggregator,
	dashboard *usecase.Dashboard,
	archiver *usecase.ReactionArchiver,
	store repository.ArchiveStore,
	priceCache cache.Service,
	loc *time.Location,
) xhttp.Handler {
	opts := []api.HandlerOption{
		// reaction endpoints fan out to every asset; two per second per client
		api.WithRateLimiter(ratelimit.New(500*time.Millisecond, 4)),
	}
	if store != nil {
		opts = append(opts, api.WithReadinessCheck("clickhouse", store.Health))
	}
	if priceCache != nil {
		opts = append(opts, api.WithReadinessCheck("price_cache", priceCache.Ping))
	}
	return api.NewDashboardHandler(log, catalog, reactions, dashboard, archiver, loc, opts...)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(handler xhttp.Handler, log *logger.Logger, cfg *config.Config, reg *prometheus.Registry) *xhttp.Server {
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	return xhttp.NewServer(handler, log,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(path),
		xhttp.WithRegistry(reg),
	)
}

// ProvideKafkaConsumer creates the archive consumer when archive.consume is set.
func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Archive.Consume {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideSnapshotHandler stores consumed snapshots in ClickHouse.
func ProvideSnapshotHandler(cfg *config.Config, store repository.ArchiveStore, m repository.Metrics) pkgkafka.MessageHandler {
	if !cfg.Archive.Consume || store == nil {
		return nil
	}
	return usecase.NewKafkaSnapshotHandler(cfg.Kafka.Topic, store, m)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	srv *xhttp.Server,
	catalog *usecase.EventCatalog,
	archiver *usecase.ReactionArchiver,
	consumer *pkgkafka.Consumer,
	handler pkgkafka.MessageHandler,
) *server.App {
	return server.New(cfg, log, srv, catalog, archiver, consumer, handler)
}

// ProvideExporter builds the export runner. Exports are not archived.
func ProvideExporter(
	catalog *usecase.EventCatalog,
	prices repository.PriceFetcher,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
	loc *time.Location,
) *export.Exporter {
	reactions := ProvideReactionAggregator(prices, nil, m, log, cfg, loc)
	return export.NewExporter(catalog, reactions, log)
}
