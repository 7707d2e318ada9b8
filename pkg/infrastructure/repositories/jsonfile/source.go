package jsonfile

import (
	"context"
	"os"

	"github.com/vsinha/pricelist/pkg/domain/entities"
	"github.com/vsinha/pricelist/pkg/domain/repositories"
)

// Source reads the catalog document from a local JSON file
type Source struct {
	path string
}

// NewSource creates a catalog source backed by a JSON file
func NewSource(path string) *Source {
	return &Source{path: path}
}

var _ repositories.CatalogSource = (*Source)(nil)

// FetchCatalog reads and decodes the file
func (s *Source) FetchCatalog(ctx context.Context) (*entities.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, &entities.FetchError{Source: s.path, Err: err}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &entities.FetchError{Source: s.path, Err: err}
	}
	return entities.ParseCatalog(data)
}

// Location returns the file path
func (s *Source) Location() string {
	return s.path
}
