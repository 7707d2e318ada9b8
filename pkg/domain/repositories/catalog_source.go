package repositories

import (
	"context"

	"github.com/vsinha/pricelist/pkg/domain/entities"
)

// CatalogSource retrieves the catalog document from wherever it is published.
// Implementations report *entities.FetchError and *entities.ParseError.
type CatalogSource interface {
	FetchCatalog(ctx context.Context) (*entities.Catalog, error)

	// Location describes the source for logs and error messages
	Location() string
}
