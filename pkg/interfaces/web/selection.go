package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vsinha/pricelist/pkg/domain/entities"
)

const (
	paramMachine = "machine"
	paramHour    = "hour"
)

// selectionFromQuery applies the machine and hour query parameters on top of
// the initial selection. An absent parameter keeps the initial value, an
// empty one clears it.
func selectionFromQuery(query url.Values, initial entities.Selection) (entities.Selection, error) {
	sel := initial

	if values, ok := query[paramMachine]; ok {
		sel = sel.WithMachine(entities.MachineModel(first(values)))
	}

	if values, ok := query[paramHour]; ok {
		raw := strings.TrimSpace(first(values))
		if raw == "" {
			return sel.WithoutHourCeiling(), nil
		}
		hour, err := strconv.Atoi(raw)
		if err != nil {
			return sel, echo.NewHTTPError(http.StatusBadRequest, "hour must be an integer").SetInternal(err)
		}
		sel = sel.WithHourCeiling(entities.Hour(hour))
	}

	return sel, nil
}

// selectionQuery encodes a selection back into query parameters
func selectionQuery(sel entities.Selection) url.Values {
	query := url.Values{}
	query.Set(paramMachine, string(sel.Machine))
	if sel.HasHourCeiling {
		query.Set(paramHour, strconv.Itoa(int(sel.HourCeiling)))
	} else {
		query.Set(paramHour, "")
	}
	return query
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
