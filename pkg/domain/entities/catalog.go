package entities

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Catalog is the loaded price list document: the machine models and hour
// checkpoints in display order, plus every priced maintenance item
type Catalog struct {
	Machines []MachineModel `json:"machines"`
	Hours    []Hour         `json:"hours"`
	Items    []Item         `json:"items"`
}

// NewCatalog creates a catalog that owns copies of the given slices
func NewCatalog(machines []MachineModel, hours []Hour, items []Item) *Catalog {
	return &Catalog{
		Machines: append([]MachineModel{}, machines...),
		Hours:    append([]Hour{}, hours...),
		Items:    append([]Item{}, items...),
	}
}

// FirstMachine returns the first listed machine, or false for an empty list
func (c *Catalog) FirstMachine() (MachineModel, bool) {
	if c == nil || len(c.Machines) == 0 {
		return "", false
	}
	return c.Machines[0], true
}

// FirstHour returns the first listed hour checkpoint, or false for an empty list
func (c *Catalog) FirstHour() (Hour, bool) {
	if c == nil || len(c.Hours) == 0 {
		return 0, false
	}
	return c.Hours[0], true
}

// catalogDocument mirrors the data document. Both the legacy Portuguese keys
// and the English keys are accepted; the Portuguese key wins when both are set.
type catalogDocument struct {
	Machines *[]MachineModel `json:"machines"`
	Hours    *[]documentHour `json:"hours"`
	Items    *[]itemDocument `json:"items"`
}

type itemDocument struct {
	Venda       *string       `json:"venda"`
	SaleType    *string       `json:"saleType"`
	Plano       *string       `json:"plano"`
	Plan        *string       `json:"plan"`
	Modelo      *MachineModel `json:"modelo"`
	Model       *MachineModel `json:"model"`
	Hour        documentHour  `json:"hour"`
	Tipo        *string       `json:"tipo"`
	Type        *string       `json:"type"`
	Codigo      *string       `json:"codigo"`
	Code        *string       `json:"code"`
	Descricao   *string       `json:"descricao"`
	Description *string       `json:"description"`
	Precos      priceDocument `json:"precos"`
	Price       priceDocument `json:"price"`
}

type priceDocument struct {
	Custo    documentAmount `json:"custo"`
	Cost     documentAmount `json:"cost"`
	Margem   documentAmount `json:"margem"`
	Margin   documentAmount `json:"margin"`
	Impostos documentAmount `json:"impostos"`
	Taxes    documentAmount `json:"taxes"`
	Over     documentAmount `json:"over"`
}

// documentAmount is a price member: a JSON number, or null for absent.
// Quoted numbers are rejected.
type documentAmount struct {
	decimal.NullDecimal
}

func (a *documentAmount) UnmarshalJSON(b []byte) error {
	raw := string(bytes.TrimSpace(b))
	if raw == "null" {
		a.NullDecimal = decimal.NullDecimal{}
		return nil
	}
	if !isJSONNumber(raw) {
		return fmt.Errorf("price must be a number or null, got %s", raw)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid price %s: %w", raw, err)
	}
	a.NullDecimal = decimal.NewNullDecimal(d)
	return nil
}

// documentHour is an hour checkpoint: any JSON number with an integral
// value, so 500 and 500.0 are the same hour
type documentHour Hour

func (h *documentHour) UnmarshalJSON(b []byte) error {
	raw := string(bytes.TrimSpace(b))
	if raw == "null" {
		return nil
	}
	if !isJSONNumber(raw) {
		return fmt.Errorf("hour must be a number, got %s", raw)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() || !d.Equal(decimal.NewFromInt(d.IntPart())) {
		return fmt.Errorf("hour must be an integer, got %s", raw)
	}
	*h = documentHour(d.IntPart())
	return nil
}

// isJSONNumber reports whether a raw JSON value is a number literal
func isJSONNumber(raw string) bool {
	if raw == "" {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

// ParseCatalog decodes a catalog document. Any structural problem is
// reported as a *ParseError.
func ParseCatalog(data []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ParseError{Err: fmt.Errorf("document is not a JSON object")}
	}

	var doc catalogDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	if doc.Machines == nil {
		return nil, &ParseError{Err: fmt.Errorf("missing machines list")}
	}
	if doc.Hours == nil {
		return nil, &ParseError{Err: fmt.Errorf("missing hours list")}
	}
	if doc.Items == nil {
		return nil, &ParseError{Err: fmt.Errorf("missing items list")}
	}

	items := make([]Item, 0, len(*doc.Items))
	for _, d := range *doc.Items {
		items = append(items, d.toItem())
	}

	hours := make([]Hour, 0, len(*doc.Hours))
	for _, h := range *doc.Hours {
		hours = append(hours, Hour(h))
	}

	return &Catalog{
		Machines: *doc.Machines,
		Hours:    hours,
		Items:    items,
	}, nil
}

func (d itemDocument) toItem() Item {
	return Item{
		SaleType:    firstString(d.Venda, d.SaleType),
		Plan:        firstString(d.Plano, d.Plan),
		Model:       MachineModel(firstString((*string)(d.Modelo), (*string)(d.Model))),
		Hour:        Hour(d.Hour),
		Type:        firstString(d.Tipo, d.Type),
		Code:        firstString(d.Codigo, d.Code),
		Description: firstString(d.Descricao, d.Description),
		Price: Price{
			Cost:   firstValid(d.Precos.Custo, d.Precos.Cost, d.Price.Custo, d.Price.Cost),
			Margin: firstValid(d.Precos.Margem, d.Precos.Margin, d.Price.Margem, d.Price.Margin),
			Taxes:  firstValid(d.Precos.Impostos, d.Precos.Taxes, d.Price.Impostos, d.Price.Taxes),
			Over:   firstValid(d.Precos.Over, d.Price.Over),
		},
	}
}

func firstString(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}

func firstValid(values ...documentAmount) decimal.NullDecimal {
	for _, v := range values {
		if v.Valid {
			return v.NullDecimal
		}
	}
	return decimal.NullDecimal{}
}
