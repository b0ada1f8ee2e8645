//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"MacroPull/internal/export"
	"MacroPull/pkg/config"
	"MacroPull/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideVenue,
		ProvideRegistry,
		ProvideMetrics,

		// Providers and infrastructure clients
		ProvideEconomicSource,
		ProvideBarSource,
		ProvidePriceCache,
		ProvidePriceFetcher,
		ProvideClickHouseClient,
		ProvideArchiveStore,
		ProvideReactionPublisher,
		ProvideKafkaConsumer,
		ProvideSnapshotHandler,

		// Use cases
		ProvideArchiver,
		ProvideEventCatalog,
		ProvideReactionAggregator,
		ProvideDashboard,

		// HTTP
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeExporter wires the event catalog and reaction pipeline for the
// export command.
func InitializeExporter(cfg *config.Config) (*export.Exporter, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideVenue,
		ProvideRegistry,
		ProvideMetrics,
		ProvideEconomicSource,
		ProvideBarSource,
		ProvidePriceCache,
		ProvidePriceFetcher,
		ProvideEventCatalog,
		ProvideExporter,
	)
	return nil, nil, nil
}
