package output

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/vsinha/pricelist/pkg/application/dto"
	"github.com/vsinha/pricelist/pkg/application/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateData contains all data for rendering the HTML export
type TemplateData struct {
	Title       string
	Summary     string
	Columns     []string
	Rows        [][]string
	TotalCost   string
	TotalOver   string
	GeneratedAt string
	// DataJSON embeds the raw price list for scripts that post-process the page
	DataJSON template.JS
}

// generateHTMLOutput writes a self-contained HTML page with the table
func generateHTMLOutput(list *dto.PriceList, w io.Writer, title string) error {
	if title == "" {
		title = "Lista de Itens"
	}

	var raw bytes.Buffer
	if err := generateJSONOutput(list, &raw); err != nil {
		return err
	}
	jsonData, err := json.Marshal(json.RawMessage(raw.Bytes()))
	if err != nil {
		return fmt.Errorf("failed to compact price list JSON: %w", err)
	}

	data := &TemplateData{
		Title:       title,
		Summary:     services.Summary(list.Selection, list.Count()),
		Columns:     columns,
		Rows:        make([][]string, 0, len(list.Items)),
		TotalCost:   services.FormatMoney(list.TotalCost),
		TotalOver:   services.FormatMoney(list.TotalOver),
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		DataJSON:    template.JS(jsonData),
	}
	for i := range list.Items {
		data.Rows = append(data.Rows, row(&list.Items[i]))
	}

	tmpl, err := template.ParseFS(templateFS, "templates/pricelist.html")
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
