package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pricelist/pkg/application/dto"
	"github.com/vsinha/pricelist/pkg/application/services"
	"github.com/vsinha/pricelist/pkg/domain/entities"
)

// Supported formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
	FormatHTML = "html"
)

// Formats lists every supported format in help order
var Formats = []string{FormatText, FormatJSON, FormatCSV, FormatXLSX, FormatPDF, FormatHTML}

// Config holds configuration for output generation
type Config struct {
	Format string
	// OutputFile receives the output; empty means Writer
	OutputFile string
	Writer     io.Writer
	Title      string
}

// columns are the table headings shared by every tabular format
var columns = []string{"Venda", "Plano", "Modelo", "Revisão", "Tipo", "Código", "Descrição", "Custo", "Over"}

// Generate writes the price list in the configured format
func Generate(list *dto.PriceList, config Config) (err error) {
	w := config.Writer
	if config.OutputFile != "" {
		f, createErr := os.Create(config.OutputFile)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = f
	}
	if w == nil {
		w = os.Stdout
	}

	switch config.Format {
	case FormatText, "":
		return generateTextOutput(list, w)
	case FormatJSON:
		return generateJSONOutput(list, w)
	case FormatCSV:
		return generateCSVOutput(list, w)
	case FormatXLSX:
		return generateXLSXOutput(list, w, config.Title)
	case FormatPDF:
		return generatePDFOutput(list, w, config.Title)
	case FormatHTML:
		return generateHTMLOutput(list, w, config.Title)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// row formats one item the way the page shows it
func row(item *entities.Item) []string {
	return []string{
		item.SaleType,
		item.Plan,
		string(item.Model),
		services.FormatHour(item.Hour),
		item.Type,
		item.Code,
		item.Description,
		services.FormatAmount(item.Price.Cost),
		services.FormatAmount(item.Price.Over),
	}
}

// generateTextOutput prints an aligned table followed by the totals
func generateTextOutput(list *dto.PriceList, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, services.Summary(list.Selection, list.Count()))
	fmt.Fprintln(tw)

	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw, "\t")
	}

	writeRow(columns)
	for i := range list.Items {
		writeRow(row(&list.Items[i]))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal  %s → %s\n",
		services.FormatMoney(list.TotalCost), services.FormatMoney(list.TotalOver))
	return err
}

// jsonPriceList is the exported document; amounts stay exact decimals
type jsonPriceList struct {
	Machine     entities.MachineModel `json:"machine"`
	HourCeiling *entities.Hour        `json:"hourCeiling"`
	Count       int                   `json:"count"`
	Items       []entities.Item       `json:"items"`
	TotalCost   decimal.Decimal       `json:"totalCost"`
	TotalOver   decimal.Decimal       `json:"totalOver"`
}

// generateJSONOutput creates JSON output
func generateJSONOutput(list *dto.PriceList, w io.Writer) error {
	doc := jsonPriceList{
		Machine:   list.Selection.Machine,
		Count:     list.Count(),
		Items:     list.Items,
		TotalCost: list.TotalCost,
		TotalOver: list.TotalOver,
	}
	if list.Selection.HasHourCeiling {
		hour := list.Selection.HourCeiling
		doc.HourCeiling = &hour
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// generateCSVOutput writes raw amounts with the same header the CSV catalog
// source reads, so an export can be loaded back
func generateCSVOutput(list *dto.PriceList, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"venda", "plano", "modelo", "hour", "tipo", "codigo", "descricao", "custo", "margem", "impostos", "over"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	amount := func(v decimal.NullDecimal) string {
		if !v.Valid {
			return ""
		}
		return v.Decimal.String()
	}
	for _, item := range list.Items {
		record := []string{
			item.SaleType,
			item.Plan,
			string(item.Model),
			fmt.Sprint(int(item.Hour)),
			item.Type,
			item.Code,
			item.Description,
			amount(item.Price.Cost),
			amount(item.Price.Margin),
			amount(item.Price.Taxes),
			amount(item.Price.Over),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
