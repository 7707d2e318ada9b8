package repositories

import "github.com/vsinha/pricelist/pkg/domain/entities"

// ItemRepository provides read access to the loaded price list catalog
type ItemRepository interface {
	GetCatalog() (*entities.Catalog, error)
	GetItemsByMachine(model entities.MachineModel) ([]*entities.Item, error)
	LoadCatalog(catalog *entities.Catalog) error
}
