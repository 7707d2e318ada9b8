package testing

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pricelist/pkg/domain/entities"
	"github.com/vsinha/pricelist/pkg/domain/repositories"
	"github.com/vsinha/pricelist/pkg/infrastructure/repositories/memory"
)

// Amount returns a present price value; it panics on malformed input
func Amount(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(value))
}

// Absent returns a missing price value
func Absent() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

// BuildScenarioCatalog builds the two-item catalog used by the basic
// derivation scenarios: X1 with item A at 500h costing 100 and item B at
// 1000h with an over price of 50
func BuildScenarioCatalog() *entities.Catalog {
	return entities.NewCatalog(
		[]entities.MachineModel{"X1"},
		[]entities.Hour{500, 1000},
		[]entities.Item{
			{Model: "X1", Hour: 500, Code: "A", Price: entities.Price{Cost: Amount("100")}},
			{Model: "X1", Hour: 1000, Code: "B", Price: entities.Price{Over: Amount("50")}},
		},
	)
}

// BuildSampleCatalog builds a catalog with two machine models, unsorted
// items, missing prices and an item for a model that is not listed
func BuildSampleCatalog() *entities.Catalog {
	return entities.NewCatalog(
		[]entities.MachineModel{"T7.175", "T8.385"},
		[]entities.Hour{500, 1000, 1500, 2000},
		[]entities.Item{
			{
				SaleType: "Balcão", Plan: "Básico", Model: "T7.175", Hour: 1000, Type: "Peça",
				Code: "84217301", Description: "Filtro de óleo do motor",
				Price: entities.Price{Cost: Amount("85.90"), Margin: Amount("0.30"), Taxes: Amount("0.18"), Over: Amount("131.42")},
			},
			{
				SaleType: "Balcão", Plan: "Básico", Model: "T7.175", Hour: 500, Type: "Peça",
				Code: "87803444", Description: "Filtro de combustível",
				Price: entities.Price{Cost: Amount("120.50"), Over: Amount("184.37")},
			},
			{
				SaleType: "Oficina", Plan: "Básico", Model: "T7.175", Hour: 500, Type: "Serviço",
				Code: "00000001", Description: "Mão de obra revisão 500h",
				Price: entities.Price{Cost: Amount("450"), Over: Absent()},
			},
			{
				SaleType: "Balcão", Plan: "Completo", Model: "T7.175", Hour: 2000, Type: "Fluido",
				Code: "73344262", Description: "Óleo de transmissão 20L",
				Price: entities.Price{Cost: Absent(), Over: Amount("960")},
			},
			{
				SaleType: "Balcão", Plan: "Básico", Model: "T8.385", Hour: 500, Type: "Peça",
				Code: "47408440", Description: "Filtro de ar primário",
				Price: entities.Price{Cost: Amount("310"), Over: Amount("474.30")},
			},
			{
				SaleType: "Balcão", Plan: "Básico", Model: "T6.110", Hour: 500, Type: "Peça",
				Code: "99999999", Description: "Item de modelo fora da lista",
				Price: entities.Price{Cost: Amount("1")},
			},
		},
	)
}

// BuildLoadedRepository returns an item repository holding catalog
func BuildLoadedRepository(catalog *entities.Catalog) *memory.ItemRepository {
	repo := memory.NewItemRepository()
	if err := repo.LoadCatalog(catalog); err != nil {
		panic(err)
	}
	return repo
}

// StaticSource is a catalog source returning a fixed outcome and counting how
// often it was asked. When Gate is set, fetches block until it is closed or
// the context ends.
type StaticSource struct {
	Catalog *entities.Catalog
	Err     error
	Gate    chan struct{}

	calls   atomic.Int32
	started sync.Once
	Started chan struct{}
}

var _ repositories.CatalogSource = (*StaticSource)(nil)

// NewStaticSource creates a source that succeeds with catalog, or fails with
// err when err is not nil
func NewStaticSource(catalog *entities.Catalog, err error) *StaticSource {
	return &StaticSource{Catalog: catalog, Err: err, Started: make(chan struct{})}
}

// FetchCatalog implements repositories.CatalogSource
func (s *StaticSource) FetchCatalog(ctx context.Context) (*entities.Catalog, error) {
	s.calls.Add(1)
	s.started.Do(func() { close(s.Started) })

	if s.Gate != nil {
		select {
		case <-s.Gate:
		case <-ctx.Done():
			return nil, &entities.FetchError{Source: s.Location(), Err: ctx.Err()}
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Catalog, nil
}

// Location implements repositories.CatalogSource
func (s *StaticSource) Location() string {
	return "static://fixture"
}

// Calls returns how many fetches were issued
func (s *StaticSource) Calls() int {
	return int(s.calls.Load())
}
