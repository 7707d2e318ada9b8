package web

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/vsinha/pricelist/pkg/application/dto"
	"github.com/vsinha/pricelist/pkg/application/services"
	"github.com/vsinha/pricelist/pkg/domain/entities"
)

// stateResponse is returned by the API while the catalog is not ready
type stateResponse struct {
	State services.LoadState `json:"state"`
	Error string             `json:"error,omitempty"`
}

type selectionResponse struct {
	Machine     entities.MachineModel `json:"machine"`
	HourCeiling *entities.Hour        `json:"hourCeiling"`
}

type totalsResponse struct {
	Cost decimal.Decimal `json:"cost"`
	Over decimal.Decimal `json:"over"`
}

type displayTotalsResponse struct {
	Cost string `json:"cost"`
	Over string `json:"over"`
}

type priceListResponse struct {
	Revision  string                `json:"revision"`
	Selection selectionResponse     `json:"selection"`
	Count     int                   `json:"count"`
	Items     []entities.Item       `json:"items"`
	Totals    totalsResponse        `json:"totals"`
	Display   displayTotalsResponse `json:"display"`
}

type catalogResponse struct {
	Revision string            `json:"revision"`
	LoadedAt time.Time         `json:"loadedAt"`
	Catalog  *entities.Catalog `json:"catalog"`
}

type healthResponse struct {
	Status   string             `json:"status"`
	Catalog  services.LoadState `json:"catalog"`
	Source   string             `json:"source"`
	Revision string             `json:"revision,omitempty"`
	Items    int                `json:"items"`
	Error    string             `json:"error,omitempty"`
}

// handleIndex renders the page in whichever state the loader is in
func (s *Server) handleIndex(c echo.Context) error {
	snap := s.loader.Snapshot()
	base := pageView{
		Title:          s.opts.PWA.Name,
		ThemeColor:     s.opts.PWA.ThemeColor,
		RefreshSeconds: loadingRefreshSeconds,
	}

	var (
		view   *pageView
		status = http.StatusOK
	)
	switch snap.State {
	case services.LoadStateLoading:
		view = &base
		view.State = stateLoading
	case services.LoadStateError:
		view = &base
		view.State = stateError
		view.Message = snap.Message()
		status = http.StatusServiceUnavailable
	default:
		list, err := s.derive(c, snap)
		if err != nil {
			return err
		}
		view = buildReadyView(base, snap.Catalog, list)
	}

	body, err := s.pages.render(view)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.HTMLBlob(status, body)
}

// handleCatalog returns the loaded catalog with English keys
func (s *Server) handleCatalog(c echo.Context) error {
	snap := s.loader.Snapshot()
	if snap.State != services.LoadStateReady {
		return notReady(c, snap)
	}
	return c.JSON(http.StatusOK, catalogResponse{
		Revision: snap.Revision,
		LoadedAt: snap.LoadedAt,
		Catalog:  snap.Catalog,
	})
}

// handlePriceList returns the derived list for ?machine=&hour=
func (s *Server) handlePriceList(c echo.Context) error {
	snap := s.loader.Snapshot()
	if snap.State != services.LoadStateReady {
		return notReady(c, snap)
	}

	list, err := s.derive(c, snap)
	if err != nil {
		return err
	}

	resp := priceListResponse{
		Revision: snap.Revision,
		Selection: selectionResponse{
			Machine: list.Selection.Machine,
		},
		Count: list.Count(),
		Items: list.Items,
		Totals: totalsResponse{
			Cost: list.TotalCost,
			Over: list.TotalOver,
		},
		Display: displayTotalsResponse{
			Cost: services.FormatMoney(list.TotalCost),
			Over: services.FormatMoney(list.TotalOver),
		},
	}
	if list.Selection.HasHourCeiling {
		hour := list.Selection.HourCeiling
		resp.Selection.HourCeiling = &hour
	}
	return c.JSON(http.StatusOK, resp)
}

// handleDataFile publishes the raw catalog document the loader may fetch
func (s *Server) handleDataFile(c echo.Context) error {
	if s.opts.DataFile == "" {
		return echo.ErrNotFound
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.File(s.opts.DataFile)
}

// handleHealth reports the loader state. A failed load is unhealthy since
// the process never retries it.
func (s *Server) handleHealth(c echo.Context) error {
	snap := s.loader.Snapshot()
	resp := healthResponse{
		Status:   "ok",
		Catalog:  snap.State,
		Source:   snap.Source,
		Revision: snap.Revision,
		Error:    snap.Message(),
	}
	if snap.Catalog != nil {
		resp.Items = len(snap.Catalog.Items)
	}

	status := http.StatusOK
	if snap.State == services.LoadStateError {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}

func (s *Server) derive(c echo.Context, snap services.Snapshot) (*dto.PriceList, error) {
	sel, err := selectionFromQuery(c.QueryParams(), snap.InitialSelection())
	if err != nil {
		return nil, err
	}
	list, err := s.prices.PriceList(snap.Revision, sel)
	if err != nil {
		s.logger.Error().Err(err).Str("selection", sel.Key()).Msg("price list derivation failed")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to derive price list").SetInternal(err)
	}
	return list, nil
}

func notReady(c echo.Context, snap services.Snapshot) error {
	if snap.State == services.LoadStateLoading {
		c.Response().Header().Set(echo.HeaderRetryAfter, "2")
	}
	return c.JSON(http.StatusServiceUnavailable, stateResponse{
		State: snap.State,
		Error: snap.Message(),
	})
}
