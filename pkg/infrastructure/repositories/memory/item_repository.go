package memory

import (
	"errors"
	"sync"

	"github.com/vsinha/pricelist/pkg/domain/entities"
	"github.com/vsinha/pricelist/pkg/domain/repositories"
)

// ErrCatalogNotLoaded is returned when the repository is read before a catalog
// has been loaded into it
var ErrCatalogNotLoaded = errors.New("catalog not loaded")

// ItemRepository provides in-memory catalog storage with a per-machine index
type ItemRepository struct {
	mu        sync.RWMutex
	catalog   *entities.Catalog
	byMachine map[entities.MachineModel][]int
}

// NewItemRepository creates a new empty in-memory item repository
func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

// Verify interface compliance
var _ repositories.ItemRepository = (*ItemRepository)(nil)

// LoadCatalog stores a private copy of the catalog and indexes its items by
// machine model. Index positions keep the catalog order.
func (r *ItemRepository) LoadCatalog(catalog *entities.Catalog) error {
	if catalog == nil {
		return errors.New("cannot load a nil catalog")
	}

	stored := entities.NewCatalog(catalog.Machines, catalog.Hours, catalog.Items)
	index := make(map[entities.MachineModel][]int, len(stored.Machines))
	for i := range stored.Items {
		model := stored.Items[i].Model
		index[model] = append(index[model], i)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = stored
	r.byMachine = index
	return nil
}

// GetCatalog returns the loaded catalog. Callers must treat it as read-only.
func (r *ItemRepository) GetCatalog() (*entities.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.catalog == nil {
		return nil, ErrCatalogNotLoaded
	}
	return r.catalog, nil
}

// GetItemsByMachine returns the items of one machine model in catalog order.
// An unknown model yields an empty result, not an error.
func (r *ItemRepository) GetItemsByMachine(model entities.MachineModel) ([]*entities.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.catalog == nil {
		return nil, ErrCatalogNotLoaded
	}

	positions := r.byMachine[model]
	items := make([]*entities.Item, 0, len(positions))
	for _, i := range positions {
		items = append(items, &r.catalog.Items[i])
	}
	return items, nil
}
