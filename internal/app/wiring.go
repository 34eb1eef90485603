package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/masters"
	"github.com/finoracle/backoffice/internal/masters/mappings"
	"github.com/finoracle/backoffice/internal/masters/menus"
	"github.com/finoracle/backoffice/internal/masters/roles"
	"github.com/finoracle/backoffice/internal/masters/users"
	"github.com/finoracle/backoffice/internal/observability"
	"github.com/finoracle/backoffice/internal/refdata"
)

// NewGateway builds the remote service client with its fixture fallback.
func NewGateway(cfg *Config, logger *slog.Logger, metrics *observability.Metrics) *gateway.Client {
	opts := []gateway.Option{
		gateway.WithLogger(logger),
		gateway.WithFixtures(gateway.NewFixtures(cfg.GatewayFixtureDir)),
	}
	if metrics != nil {
		opts = append(opts, gateway.WithRecorder(metrics))
	}
	return gateway.NewClient(cfg.APIBaseURL, cfg.APITimeout, opts...)
}

// NewRefdataLoader builds the reference list loader over the Redis cache.
func NewRefdataLoader(cfg *Config, client *redis.Client, gw *gateway.Client, logger *slog.Logger, metrics *observability.Metrics) *refdata.Loader {
	var recorder refdata.Recorder
	if metrics != nil {
		recorder = metrics
	}
	return refdata.NewLoader(refdata.NewCache(client, cfg.RefdataCacheTTL), logger, recorder, masters.ReferenceLists(gw)...)
}

// NewModules builds every master screen in sidebar order.
func NewModules(gw *gateway.Client, deps masters.Deps) []masters.Module {
	return []masters.Module{
		menus.New(gw, deps),
		roles.New(gw, deps),
		mappings.New(gw, deps),
		users.New(gw, deps),
	}
}
