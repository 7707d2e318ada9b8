package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vsinha/pricelist/pkg/application/services"
	"github.com/vsinha/pricelist/pkg/domain/entities"
	"github.com/vsinha/pricelist/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/pricelist/pkg/interfaces/cli/output"
)

// ListConfig holds configuration for the list command
type ListConfig struct {
	Global GlobalConfig
	// Machine and Hour override the initial selection when non-nil. An empty
	// Hour clears the ceiling.
	Machine    *string
	Hour       *string
	Format     string
	OutputFile string
	Title      string
	Out        io.Writer
}

// ListCommand loads the catalog once and prints the derived price list
type ListCommand struct {
	config ListConfig
}

// NewListCommand creates a new list command with the given configuration
func NewListCommand(config ListConfig) *ListCommand {
	return &ListCommand{config: config}
}

// Execute runs the list command
func (c *ListCommand) Execute(ctx context.Context) error {
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	cfg, logger, err := c.config.Global.setup()
	if err != nil {
		return err
	}

	source, err := newCatalogSource(cfg.Catalog)
	if err != nil {
		return err
	}

	repo := memory.NewItemRepository()
	loader := services.NewCatalogLoader(source, repo, logger, nil)
	catalog, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	sel, err := c.resolveSelection(catalog)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	warnUnknown(logger, catalog, sel)

	prices := services.NewPriceListService(repo, cfg.CacheTTL(), nil)
	list, err := prices.PriceList(loader.Snapshot().Revision, sel)
	if err != nil {
		return fmt.Errorf("failed to derive price list: %w", err)
	}

	return output.Generate(list, output.Config{
		Format:     c.config.Format,
		OutputFile: c.config.OutputFile,
		Writer:     c.config.Out,
		Title:      c.config.Title,
	})
}

func (c *ListCommand) validateInputs() error {
	for _, f := range output.Formats {
		if c.config.Format == f || c.config.Format == "" {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s (expected one of %s)",
		c.config.Format, strings.Join(output.Formats, ", "))
}

// resolveSelection applies the machine and hour flags on top of the initial
// selection of the catalog
func (c *ListCommand) resolveSelection(catalog *entities.Catalog) (entities.Selection, error) {
	sel := entities.InitialSelection(catalog)

	if c.config.Machine != nil {
		sel = sel.WithMachine(entities.MachineModel(strings.TrimSpace(*c.config.Machine)))
	}
	if c.config.Hour != nil {
		raw := strings.TrimSpace(*c.config.Hour)
		if raw == "" {
			return sel.WithoutHourCeiling(), nil
		}
		hour, err := parseHour(raw)
		if err != nil {
			return sel, err
		}
		sel = sel.WithHourCeiling(hour)
	}
	return sel, nil
}

// parseHour accepts both "500" and the displayed "0500H" form
func parseHour(raw string) (entities.Hour, error) {
	digits := strings.TrimSuffix(strings.TrimSuffix(raw, "H"), "h")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid hour %q: must be an integer", raw)
	}
	return entities.Hour(n), nil
}

// warnUnknown logs selections that cannot match any listed option. The
// derivation still runs and simply yields what the items admit.
func warnUnknown(logger zerolog.Logger, catalog *entities.Catalog, sel entities.Selection) {
	if sel.Machine != "" && !containsMachine(catalog.Machines, sel.Machine) {
		logger.Warn().Str("machine", string(sel.Machine)).Msg("machine is not listed in the catalog")
	}
	if sel.HasHourCeiling && !containsHour(catalog.Hours, sel.HourCeiling) {
		logger.Warn().Int("hour", int(sel.HourCeiling)).Msg("hour is not listed in the catalog")
	}
}

func containsMachine(machines []entities.MachineModel, m entities.MachineModel) bool {
	for _, candidate := range machines {
		if candidate == m {
			return true
		}
	}
	return false
}

func containsHour(hours []entities.Hour, h entities.Hour) bool {
	for _, candidate := range hours {
		if candidate == h {
			return true
		}
	}
	return false
}
