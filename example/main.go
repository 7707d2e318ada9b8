package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vsinha/pricelist/pkg/application/services"
	"github.com/vsinha/pricelist/pkg/domain/entities"
	"github.com/vsinha/pricelist/pkg/infrastructure/repositories/jsonfile"
	"github.com/vsinha/pricelist/pkg/interfaces/cli/output"
)

// Prints the full price list of every machine in the sample catalog, using
// the largest hour ceiling.
func main() {
	ctx := context.Background()

	path := "data/maintenance.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	catalog, err := jsonfile.NewSource(path).FetchCatalog(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("📂 %d machines, %d hours, %d items\n\n",
		len(catalog.Machines), len(catalog.Hours), len(catalog.Items))

	var ceiling entities.Hour
	for _, h := range catalog.Hours {
		if h > ceiling {
			ceiling = h
		}
	}

	for _, machine := range catalog.Machines {
		sel := entities.Selection{}.WithMachine(machine).WithHourCeiling(ceiling)
		list := services.Derive(catalog, sel)
		if err := output.Generate(list, output.Config{Format: output.FormatText, Writer: os.Stdout}); err != nil {
			fmt.Printf("❌ Failed to print %s: %v\n", machine, err)
			os.Exit(1)
		}
		fmt.Println()
	}
}
