package output

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/vsinha/pricelist/pkg/application/dto"
	"github.com/vsinha/pricelist/pkg/application/services"
)

// column widths in mm on a landscape A4 page, matching columns
var pdfWidths = []float64{24, 24, 22, 18, 22, 26, 83, 29, 29}

// generatePDFOutput renders the table on landscape A4 pages. The core fonts
// are cp1252, so text goes through a translator for the accented labels.
func generatePDFOutput(list *dto.PriceList, w io.Writer, title string) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(226, 232, 240)
		for i, heading := range columns {
			align := "L"
			if i >= len(columns)-2 {
				align = "R"
			}
			pdf.CellFormat(pdfWidths[i], 7, tr(heading), "1", 0, align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(9)
	}
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(services.Summary(list.Selection, list.Count())))
	pdf.Ln(8)
	header()

	for i := range list.Items {
		cells := row(&list.Items[i])
		for c, value := range cells {
			align := "L"
			if c >= len(cells)-2 {
				align = "R"
			}
			pdf.CellFormat(pdfWidths[c], 6, tr(value), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 9)
	labelWidth := 0.0
	for _, w := range pdfWidths[:len(pdfWidths)-2] {
		labelWidth += w
	}
	pdf.CellFormat(labelWidth, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfWidths[7], 7, tr(services.FormatMoney(list.TotalCost)), "1", 0, "R", false, 0, "")
	pdf.CellFormat(pdfWidths[8], 7, tr(services.FormatMoney(list.TotalOver)), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
