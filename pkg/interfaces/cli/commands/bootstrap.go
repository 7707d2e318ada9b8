package commands

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/vsinha/pricelist/pkg/domain/repositories"
	"github.com/vsinha/pricelist/pkg/infrastructure/config"
	"github.com/vsinha/pricelist/pkg/infrastructure/logging"
	"github.com/vsinha/pricelist/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/pricelist/pkg/infrastructure/repositories/httpsource"
	"github.com/vsinha/pricelist/pkg/infrastructure/repositories/jsonfile"
)

// GlobalConfig holds the flags shared by every subcommand
type GlobalConfig struct {
	ConfigFile string
	// LogLevel overrides log.level when set
	LogLevel string
	Stderr   io.Writer
}

// setup loads the configuration and builds the logger
func (g GlobalConfig) setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level := cfg.Log.Level
	if g.LogLevel != "" {
		level = g.LogLevel
	}
	logger, err := logging.New(logging.Options{Level: level, JSON: cfg.Log.JSON, Out: g.Stderr})
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

// newCatalogSource builds the configured catalog source
func newCatalogSource(cfg config.CatalogConfig) (repositories.CatalogSource, error) {
	switch cfg.Source {
	case config.SourceHTTP:
		return httpsource.NewSource(cfg.URL, nil), nil
	case config.SourceFile:
		return jsonfile.NewSource(cfg.File), nil
	case config.SourceCSV:
		return csv.NewSource(cfg.File), nil
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", cfg.Source)
	}
}
