package output

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/pricelist/pkg/application/dto"
	"github.com/vsinha/pricelist/pkg/application/services"
)

const (
	sheetName = "Itens"
	// Brazilian currency display format for numeric cells
	currencyNumFmt = `"R$" #,##0.00;-"R$" #,##0.00`
)

// generateXLSXOutput writes one sheet with the summary, the table and a
// totals row. Amounts are numeric cells so the sheet can be recalculated.
func generateXLSXOutput(list *dto.PriceList, w io.Writer, title string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(currencyNumFmt)})
	if err != nil {
		return fmt.Errorf("failed to create currency style: %w", err)
	}

	cells := &sheetWriter{f: f, sheet: sheetName}
	if title != "" {
		cells.set("A1", title)
	}
	cells.set("A2", services.Summary(list.Selection, list.Count()))

	const headerRow = 4
	for i, heading := range columns {
		cells.setAt(i+1, headerRow, heading)
	}
	if cells.err != nil {
		return cells.err
	}
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return fmt.Errorf("failed to name header column: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A4", fmt.Sprintf("%s%d", lastCol, headerRow), headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	r := headerRow
	for i := range list.Items {
		item := &list.Items[i]
		r++
		values := []any{
			item.SaleType,
			item.Plan,
			string(item.Model),
			services.FormatHour(item.Hour),
			item.Type,
			item.Code,
			item.Description,
			amountCell(item.Price.Cost),
			amountCell(item.Price.Over),
		}
		for c, v := range values {
			cells.setAt(c+1, r, v)
		}
	}

	totalRow := r + 1
	cells.set(fmt.Sprintf("A%d", totalRow), "Total")
	cells.set(fmt.Sprintf("H%d", totalRow), list.TotalCost.InexactFloat64())
	cells.set(fmt.Sprintf("I%d", totalRow), list.TotalOver.InexactFloat64())
	if cells.err != nil {
		return cells.err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("H%d", headerRow+1), fmt.Sprintf("I%d", totalRow), moneyStyle); err != nil {
		return fmt.Errorf("failed to style amounts: %w", err)
	}

	if err := f.SetColWidth(sheetName, "G", "G", 40); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

// amountCell is a numeric cell for present amounts and the placeholder text
// otherwise
func amountCell(v decimal.NullDecimal) any {
	if !v.Valid {
		return services.Placeholder
	}
	return v.Decimal.InexactFloat64()
}

// sheetWriter sets cell values and keeps the first failure; later writes
// are skipped once one has failed
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(cell string, value any) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		w.err = fmt.Errorf("failed to write cell %s: %w", cell, err)
	}
}

func (w *sheetWriter) setAt(col, row int, value any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = fmt.Errorf("failed to name cell: %w", err)
		return
	}
	w.set(cell, value)
}

func ptr[T any](v T) *T {
	return &v
}
