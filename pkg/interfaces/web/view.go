package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/vsinha/pricelist/pkg/application/dto"
	"github.com/vsinha/pricelist/pkg/application/services"
	"github.com/vsinha/pricelist/pkg/domain/entities"
)

//go:embed templates/*.html templates/*.tmpl static/*
var templateFS embed.FS

// loadingRefreshSeconds is how often the loading page polls for the catalog
const loadingRefreshSeconds = 2

// Page states
const (
	stateLoading = "loading"
	stateError   = "error"
	stateReady   = "ready"
)

// chipView is one selectable machine or hour button
type chipView struct {
	Label  string
	Href   string
	Active bool
}

// rowView is one table row with every value already formatted
type rowView struct {
	SaleType    string
	Plan        string
	Model       string
	Hour        string
	Type        string
	Code        string
	Description string
	Cost        string
	Over        string
}

// pageView is everything the index template renders
type pageView struct {
	Title          string
	ThemeColor     string
	State          string
	Message        string
	RefreshSeconds int

	Machines  []chipView
	Hours     []chipView
	Summary   string
	Rows      []rowView
	TotalCost string
	TotalOver string
}

type pageRenderer struct {
	index *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &pageRenderer{index: index}, nil
}

func (r *pageRenderer) render(view *pageView) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.index.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

func staticFS() fs.FS {
	sub, err := fs.Sub(templateFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// buildReadyView lays out chips, rows and totals for one derived price list
func buildReadyView(base pageView, catalog *entities.Catalog, list *dto.PriceList) *pageView {
	view := base
	view.State = stateReady
	sel := list.Selection

	view.Machines = make([]chipView, 0, len(catalog.Machines))
	for _, machine := range catalog.Machines {
		target := sel.WithMachine(machine)
		view.Machines = append(view.Machines, chipView{
			Label:  string(machine),
			Href:   "/?" + selectionQuery(target).Encode(),
			Active: sel.Machine == machine,
		})
	}

	view.Hours = make([]chipView, 0, len(catalog.Hours))
	for _, hour := range catalog.Hours {
		target := sel.WithHourCeiling(hour)
		view.Hours = append(view.Hours, chipView{
			Label:  services.FormatHour(hour),
			Href:   "/?" + selectionQuery(target).Encode(),
			Active: sel.HasHourCeiling && sel.HourCeiling == hour,
		})
	}

	view.Rows = make([]rowView, 0, len(list.Items))
	for _, item := range list.Items {
		view.Rows = append(view.Rows, rowView{
			SaleType:    item.SaleType,
			Plan:        item.Plan,
			Model:       string(item.Model),
			Hour:        services.FormatHour(item.Hour),
			Type:        item.Type,
			Code:        item.Code,
			Description: item.Description,
			Cost:        services.FormatAmount(item.Price.Cost),
			Over:        services.FormatAmount(item.Price.Over),
		})
	}

	view.Summary = services.Summary(sel, list.Count())
	view.TotalCost = services.FormatMoney(list.TotalCost)
	view.TotalOver = services.FormatMoney(list.TotalOver)
	return &view
}
