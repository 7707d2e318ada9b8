package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pricelist/pkg/domain/entities"
	"github.com/vsinha/pricelist/pkg/domain/repositories"
)

// ExpectedHeader is the column layout of a price list CSV file
var ExpectedHeader = []string{
	"venda", "plano", "modelo", "hour", "tipo", "codigo", "descricao",
	"custo", "margem", "impostos", "over",
}

// Loader handles loading the price list catalog from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadCatalog loads a catalog from a CSV file. Machines and hours are listed
// in the order they first appear in the file.
func (l *Loader) LoadCatalog(filename string) (*entities.Catalog, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &entities.FetchError{Source: filename, Err: err}
	}
	defer file.Close()

	return l.ReadCatalog(file)
}

// ReadCatalog reads a catalog from CSV data
func (l *Loader) ReadCatalog(r io.Reader) (*entities.Catalog, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &entities.ParseError{Err: fmt.Errorf("failed to read price list CSV: %w", err)}
	}

	if len(records) < 1 {
		return nil, &entities.ParseError{Err: fmt.Errorf("price list CSV must have a header row")}
	}

	header := records[0]
	if !validateHeader(header, ExpectedHeader) {
		return nil, &entities.ParseError{
			Err: fmt.Errorf("price list CSV header mismatch. Expected: %v, Got: %v", ExpectedHeader, header),
		}
	}

	catalog := entities.NewCatalog(nil, nil, nil)
	seenMachines := make(map[entities.MachineModel]bool)
	seenHours := make(map[entities.Hour]bool)

	for i, record := range records[1:] {
		if len(record) != len(ExpectedHeader) {
			return nil, &entities.ParseError{
				Err: fmt.Errorf("price list CSV row %d: expected %d columns, got %d", i+2, len(ExpectedHeader), len(record)),
			}
		}

		item, err := parseItem(record)
		if err != nil {
			return nil, &entities.ParseError{Err: fmt.Errorf("price list CSV row %d: %w", i+2, err)}
		}

		if !seenMachines[item.Model] {
			seenMachines[item.Model] = true
			catalog.Machines = append(catalog.Machines, item.Model)
		}
		if !seenHours[item.Hour] {
			seenHours[item.Hour] = true
			catalog.Hours = append(catalog.Hours, item.Hour)
		}
		catalog.Items = append(catalog.Items, item)
	}

	return catalog, nil
}

// Source adapts a CSV file to the CatalogSource interface
type Source struct {
	loader   *Loader
	filename string
}

// NewSource creates a catalog source backed by a CSV file
func NewSource(filename string) *Source {
	return &Source{loader: NewLoader(), filename: filename}
}

var _ repositories.CatalogSource = (*Source)(nil)

// FetchCatalog reads the CSV file
func (s *Source) FetchCatalog(ctx context.Context) (*entities.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, &entities.FetchError{Source: s.filename, Err: err}
	}
	return s.loader.LoadCatalog(s.filename)
}

// Location returns the file name
func (s *Source) Location() string {
	return s.filename
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		// encoding/csv keeps a UTF-8 byte order mark on the first field
		name := strings.TrimPrefix(actual[i], "\ufeff")
		if strings.ToLower(strings.TrimSpace(name)) != col {
			return false
		}
	}

	return true
}

func parseItem(record []string) (entities.Item, error) {
	hour, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return entities.Item{}, fmt.Errorf("invalid hour: %s", record[3])
	}

	cost, err := parseAmount("custo", record[7])
	if err != nil {
		return entities.Item{}, err
	}
	margin, err := parseAmount("margem", record[8])
	if err != nil {
		return entities.Item{}, err
	}
	taxes, err := parseAmount("impostos", record[9])
	if err != nil {
		return entities.Item{}, err
	}
	over, err := parseAmount("over", record[10])
	if err != nil {
		return entities.Item{}, err
	}

	return entities.Item{
		SaleType:    record[0],
		Plan:        record[1],
		Model:       entities.MachineModel(record[2]),
		Hour:        entities.Hour(hour),
		Type:        record[4],
		Code:        record[5],
		Description: record[6],
		Price: entities.Price{
			Cost:   cost,
			Margin: margin,
			Taxes:  taxes,
			Over:   over,
		},
	}, nil
}

// parseAmount reads an optional amount; an empty cell means absent
func parseAmount(column, value string) (decimal.NullDecimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid %s: %s", column, value)
	}
	return decimal.NewNullDecimal(d), nil
}
