package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/vsinha/pricelist/pkg/application/dto"
	"github.com/vsinha/pricelist/pkg/domain/entities"
	"github.com/vsinha/pricelist/pkg/domain/repositories"
	"github.com/vsinha/pricelist/pkg/infrastructure/metrics"
)

// Derive computes the price list of a catalog for one selection. It has no
// side effects and never fails: an incomplete selection or a nil catalog
// yields an empty list with zero totals.
func Derive(catalog *entities.Catalog, sel entities.Selection) *dto.PriceList {
	var items []entities.Item
	if catalog != nil {
		items = FilterItems(catalog.Items, sel)
	}
	return newPriceList(sel, items)
}

// FilterItems returns copies of the items admitted by the selection, in
// their original order
func FilterItems(items []entities.Item, sel entities.Selection) []entities.Item {
	if !sel.IsComplete() {
		return []entities.Item{}
	}
	admitted := make([]entities.Item, 0, len(items))
	for i := range items {
		if sel.Admits(&items[i]) {
			admitted = append(admitted, items[i])
		}
	}
	return admitted
}

// SortItems orders items by ascending hour, then by code in byte order.
// Items equal on both keys keep their relative order.
func SortItems(items []entities.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Hour != items[j].Hour {
			return items[i].Hour < items[j].Hour
		}
		return items[i].Code < items[j].Code
	})
}

// Totals sums cost and over across items. Absent prices count as zero and
// no rounding is applied.
func Totals(items []entities.Item) (cost, over decimal.Decimal) {
	cost, over = decimal.Zero, decimal.Zero
	for i := range items {
		cost = cost.Add(items[i].CostOrZero())
		over = over.Add(items[i].OverOrZero())
	}
	return cost, over
}

func newPriceList(sel entities.Selection, items []entities.Item) *dto.PriceList {
	if items == nil {
		items = []entities.Item{}
	}
	SortItems(items)
	cost, over := Totals(items)
	return &dto.PriceList{
		Selection: sel,
		Items:     items,
		TotalCost: cost,
		TotalOver: over,
	}
}

// PriceListService derives price lists from the catalog repository and
// memoizes them per catalog revision and selection
type PriceListService struct {
	repo    repositories.ItemRepository
	cache   *cache.Cache
	metrics *metrics.Metrics
}

// NewPriceListService creates a service whose cached entries expire after
// ttl; a ttl of zero keeps them for the life of the process. m may be nil.
func NewPriceListService(repo repositories.ItemRepository, ttl time.Duration, m *metrics.Metrics) *PriceListService {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &PriceListService{
		repo: repo,
		// No janitor goroutine. Only listed selections are stored, so an
		// expired entry is overwritten by the next read of the same key.
		cache:   cache.New(ttl, 0),
		metrics: m,
	}
}

// PriceList returns the price list for the selection over the catalog
// identified by revision. The result is shared between callers and must
// not be modified. Only selections whose machine and hour are both listed
// in the catalog are memoized; anything else is derived on every call.
func (s *PriceListService) PriceList(revision string, sel entities.Selection) (*dto.PriceList, error) {
	if !sel.IsComplete() {
		s.metrics.RecordDerivation(false)
		return newPriceList(sel, nil), nil
	}

	catalog, err := s.repo.GetCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if !isListed(catalog, sel) {
		s.metrics.RecordDerivation(false)
		return s.derive(sel)
	}

	key := revision + "|" + sel.Key()
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.RecordDerivation(true)
		return cached.(*dto.PriceList), nil
	}

	list, err := s.derive(sel)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, list)
	s.metrics.RecordDerivation(false)
	return list, nil
}

// isListed reports whether both selected values appear in the catalog lists
func isListed(catalog *entities.Catalog, sel entities.Selection) bool {
	machineListed := false
	for _, m := range catalog.Machines {
		if m == sel.Machine {
			machineListed = true
			break
		}
	}
	if !machineListed {
		return false
	}
	for _, h := range catalog.Hours {
		if h == sel.HourCeiling {
			return true
		}
	}
	return false
}

// CachedCount returns the number of memoized price lists
func (s *PriceListService) CachedCount() int {
	return s.cache.ItemCount()
}

// derive uses the per-machine index instead of scanning the whole catalog
func (s *PriceListService) derive(sel entities.Selection) (*dto.PriceList, error) {
	if !sel.IsComplete() {
		return newPriceList(sel, nil), nil
	}

	candidates, err := s.repo.GetItemsByMachine(sel.Machine)
	if err != nil {
		return nil, fmt.Errorf("failed to read items for %q: %w", sel.Machine, err)
	}

	items := make([]entities.Item, 0, len(candidates))
	for _, item := range candidates {
		if sel.Admits(item) {
			items = append(items, *item)
		}
	}
	return newPriceList(sel, items), nil
}

// Flush drops every memoized price list
func (s *PriceListService) Flush() {
	s.cache.Flush()
}
