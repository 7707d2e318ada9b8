package entities

import "github.com/shopspring/decimal"

// MachineModel identifies a machine model in the catalog
type MachineModel string

// Hour is a maintenance-interval checkpoint in service hours
type Hour int

// Price holds the monetary fields of one maintenance item.
// A field that is not Valid is "not applicable", which is different from zero.
type Price struct {
	Cost   decimal.NullDecimal `json:"cost"`
	Margin decimal.NullDecimal `json:"margin"`
	Taxes  decimal.NullDecimal `json:"taxes"`
	Over   decimal.NullDecimal `json:"over"`
}

// Item represents one priced maintenance operation tied to a machine model
// and a service-hour checkpoint
type Item struct {
	SaleType    string       `json:"saleType"`
	Plan        string       `json:"plan"`
	Model       MachineModel `json:"model"`
	Hour        Hour         `json:"hour"`
	Type        string       `json:"type"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Price       Price        `json:"price"`
}

// CostOrZero returns the item cost, treating an absent cost as zero
func (i *Item) CostOrZero() decimal.Decimal {
	return valueOrZero(i.Price.Cost)
}

// OverOrZero returns the item over price, treating an absent value as zero
func (i *Item) OverOrZero() decimal.Decimal {
	return valueOrZero(i.Price.Over)
}

func valueOrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}
