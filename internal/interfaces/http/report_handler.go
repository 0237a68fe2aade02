package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReportHandler expone los reportes derivados del ledger (solo lectura).
type ReportHandler struct {
	reports   *inventory.ReportUseCase
	overview  *inventory.OverviewUseCase
	presenter *Presenter
}

func NewReportHandler(reports *inventory.ReportUseCase, overview *inventory.OverviewUseCase, presenter *Presenter) *ReportHandler {
	return &ReportHandler{reports: reports, overview: overview, presenter: presenter}
}

// StockLevels godoc
// @Summary      Existencias actuales por sede y libro
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        as_of    query  string  false  "Corte (RFC 3339 o AAAA-MM-DD); por defecto ahora"
// @Param        site_id  query  string  false  "Sede"
// @Param        book_id  query  string  false  "Libro"
// @Success      200  {object}  dto.StockLevelsResponse
// @Router       /api/inventory/stock-levels [get]
func (h *ReportHandler) StockLevels(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	asOf, err := queryTime(c, "as_of", true)
	if err != nil {
		return badQuery(c, "as_of", err.Error())
	}
	f := repository.MovementFilter{SiteID: c.Query("site_id"), BookID: c.Query("book_id")}
	summary, err := h.reports.CurrentStockLevels(c.Context(), companyID, asOf, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.StockLevels(c.Context(), companyID, summary))
}

// Valuation godoc
// @Summary      Valorización del inventario a costo promedio
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        site_id  query  string  false  "Limitar a una sede"
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/inventory/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	r, err := h.reports.Valuation(c.Context(), companyID, c.Query("site_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.Valuation(c.Context(), companyID, r))
}

// ABC godoc
// @Summary      Clasificación ABC por valor de salidas
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Inicio del periodo"
// @Param        to    query  string  false  "Fin del periodo (inclusivo)"
// @Success      200  {object}  dto.ABCResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/abc [get]
func (h *ReportHandler) ABC(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	from, err := queryTime(c, "from", false)
	if err != nil {
		return badQuery(c, "from", err.Error())
	}
	to, err := queryTime(c, "to", true)
	if err != nil {
		return badQuery(c, "to", err.Error())
	}
	r, err := h.reports.ABCAnalysis(c.Context(), companyID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.ABC(c.Context(), companyID, r))
}

// Aging godoc
// @Summary      Antigüedad del stock (lento / muerto)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        slow_days  query  int  false  "Días sin movimiento para stock lento"
// @Param        dead_days  query  int  false  "Días sin movimiento para stock muerto"
// @Success      200  {object}  dto.AgingResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/aging [get]
func (h *ReportHandler) Aging(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	slow, err := queryInt64(c, "slow_days")
	if err != nil {
		return badQuery(c, "slow_days", err.Error())
	}
	dead, err := queryInt64(c, "dead_days")
	if err != nil {
		return badQuery(c, "dead_days", err.Error())
	}
	r, err := h.reports.AgingReport(c.Context(), companyID, intOrZero(slow), intOrZero(dead))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.Aging(c.Context(), companyID, r))
}

// Attention godoc
// @Summary      Movimientos recientes que requieren revisión
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        high_value        query  number  false  "Umbral de valor"
// @Param        high_quantity     query  int     false  "Umbral de cantidad"
// @Param        large_adjustment  query  int     false  "Umbral de ajuste"
// @Param        window_days       query  int     false  "Ventana en días"
// @Success      200  {object}  dto.AttentionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/attention [get]
func (h *ReportHandler) Attention(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	var p inventory.AttentionParams
	var err error
	if p.HighValue, err = queryDecimal(c, "high_value"); err != nil {
		return badQuery(c, "high_value", err.Error())
	}
	if p.HighQuantity, err = queryInt64(c, "high_quantity"); err != nil {
		return badQuery(c, "high_quantity", err.Error())
	}
	if p.LargeAdjustmentQty, err = queryInt64(c, "large_adjustment"); err != nil {
		return badQuery(c, "large_adjustment", err.Error())
	}
	window, err := queryInt64(c, "window_days")
	if err != nil {
		return badQuery(c, "window_days", err.Error())
	}
	p.WindowDays = intOrZero(window)

	r, err := h.reports.AttentionReport(c.Context(), companyID, p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.Attention(c.Context(), companyID, r))
}

// Transfers godoc
// @Summary      Conciliación de traslados entre sedes
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from     query  string  false  "Despachos desde"
// @Param        to       query  string  false  "Despachos hasta (inclusivo)"
// @Param        matcher  query  string  false  "first | nearest | one_to_one"
// @Success      200  {object}  dto.TransferReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [get]
func (h *ReportHandler) Transfers(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	from, err := queryTime(c, "from", false)
	if err != nil {
		return badQuery(c, "from", err.Error())
	}
	to, err := queryTime(c, "to", true)
	if err != nil {
		return badQuery(c, "to", err.Error())
	}
	r, err := h.reports.TransferReport(c.Context(), companyID, from, to, c.Query("matcher"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter.Transfers(c.Context(), companyID, r))
}

// Overview godoc
// @Summary      Resumen completo del inventario
// @Description  format=json (por defecto) responde el resumen; pdf y xlsx lo descargan como archivo.
// @Tags         reports
// @Security     Bearer
// @Produce      json,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "json | pdf | xlsx"
// @Success      200  {object}  dto.OverviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/overview [get]
func (h *ReportHandler) Overview(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	format := strings.ToLower(c.Query("format", "json"))
	if format == "json" {
		o, err := h.overview.Overview(c.Context(), companyID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(h.presenter.Overview(o))
	}

	body, contentType, err := h.overview.Export(c.Context(), companyID, format)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="inventario.%s"`, format))
	return c.Send(body)
}

func intOrZero(n *int64) int {
	if n == nil {
		return 0
	}
	return int(*n)
}
