package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/pricelist/pkg/domain/entities"
)

// PriceList is the derived view of a catalog for one selection: the admitted
// items in display order and the two totals over them
type PriceList struct {
	Selection entities.Selection
	Items     []entities.Item
	TotalCost decimal.Decimal
	TotalOver decimal.Decimal
}

// Count returns the number of listed items
func (p *PriceList) Count() int {
	return len(p.Items)
}

// IsEmpty reports whether no item passed the filters
func (p *PriceList) IsEmpty() bool {
	return len(p.Items) == 0
}
