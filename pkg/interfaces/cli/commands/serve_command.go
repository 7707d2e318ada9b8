package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/pricelist/pkg/application/services"
	"github.com/vsinha/pricelist/pkg/infrastructure/metrics"
	"github.com/vsinha/pricelist/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/pricelist/pkg/interfaces/web"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Global GlobalConfig
	// Port overrides server.port when positive
	Port    int
	Version string
}

// ServeCommand runs the web server until the context is cancelled
type ServeCommand struct {
	config ServeConfig
}

// NewServeCommand creates a new serve command with the given configuration
func NewServeCommand(config ServeConfig) *ServeCommand {
	return &ServeCommand{config: config}
}

// Execute starts the catalog fetch in the background and serves requests.
// Pages render the loading state until the fetch settles.
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg, logger, err := c.config.Global.setup()
	if err != nil {
		return err
	}
	if c.config.Port > 0 {
		cfg.Server.Port = c.config.Port
	}

	source, err := newCatalogSource(cfg.Catalog)
	if err != nil {
		return err
	}

	m := metrics.New()
	repo := memory.NewItemRepository()
	loader := services.NewCatalogLoader(source, repo, logger, m)
	prices := services.NewPriceListService(repo, cfg.CacheTTL(), m)

	server, err := web.NewServer(web.Options{
		Server:   cfg.Server,
		PWA:      cfg.PWA,
		DataFile: cfg.Catalog.DataFile,
		Version:  c.config.Version,
	}, loader, prices, m, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info().
		Str("source", cfg.Catalog.Source).
		Str("location", source.Location()).
		Msg("starting price list server")

	loader.Start(ctx)
	return server.Run(ctx)
}
