package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler maneja las escrituras al ledger y el listado de movimientos (protegido).
type InventoryHandler struct {
	uc        *inventory.RegisterMovementUseCase
	reports   *inventory.ReportUseCase
	presenter *Presenter
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, reports *inventory.ReportUseCase, presenter *Presenter) *InventoryHandler {
	return &InventoryHandler{uc: uc, reports: reports, presenter: presenter}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "site_id, book_id, movement_type, quantity, unit_cost, referencia"
// @Success      201   {object}  dto.MovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	m, err := h.uc.RegisterMovementFromRequest(c.Context(), companyID, userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.presenter.Movement(c.Context(), m))
}

// CorrectMovement godoc
// @Summary      Corregir un movimiento con un ajuste
// @Description  Anexa un ADJUSTMENT con reference_type "Correction"; el original no cambia.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del movimiento original"
// @Param        body  body  dto.CorrectionRequest  true  "delta con signo, motivo"
// @Success      201   {object}  dto.MovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/corrections [post]
func (h *InventoryHandler) CorrectMovement(c *fiber.Ctx) error {
	var in dto.CorrectionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	m, err := h.uc.CorrectMovement(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in.Delta, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.presenter.Movement(c.Context(), m))
}

// Transfer godoc
// @Summary      Despachar un traslado entre sedes
// @Description  Anexa el TRANSFER_OUT; con immediate=true también el TRANSFER_IN en la misma operación.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "book_id, from_site_id, to_site_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, arrival, err := h.uc.TransferFromRequest(c.Context(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	outDTO := h.presenter.Movement(c.Context(), out)
	resp := dto.TransferResponse{Out: &outDTO}
	if arrival != nil {
		inDTO := h.presenter.Movement(c.Context(), *arrival)
		resp.In = &inDTO
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ReceiveTransfer godoc
// @Summary      Registrar la llegada de un traslado
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID del TRANSFER_OUT"
// @Param        body  body  dto.ReceiptRequest  false  "cantidad y costo recibidos (por defecto los despachados)"
// @Success      201   {object}  dto.MovementDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers/{id}/receipt [post]
func (h *InventoryHandler) ReceiveTransfer(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	m, err := h.uc.ReceiveTransferFromRequest(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.presenter.Movement(c.Context(), m))
}

// ListMovements godoc
// @Summary      Consultar el ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        site_id  query  string  false  "Sede"
// @Param        book_id  query  string  false  "Libro"
// @Param        from     query  string  false  "Desde (RFC 3339 o AAAA-MM-DD, inclusivo)"
// @Param        to       query  string  false  "Hasta (inclusivo)"
// @Param        limit    query  int     false  "Máximo de movimientos (100 por defecto)"
// @Param        offset   query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	f := repository.MovementFilter{SiteID: c.Query("site_id"), BookID: c.Query("book_id")}
	from, err := queryTime(c, "from", false)
	if err != nil {
		return badQuery(c, "from", err.Error())
	}
	to, err := queryTime(c, "to", true)
	if err != nil {
		return badQuery(c, "to", err.Error())
	}
	f.From, f.To = optionalTime(from), optionalTime(to)

	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	page.DefaultPage()

	list, err := h.reports.QueryMovements(c.Context(), companyID, f)
	if err != nil {
		return respondError(c, err)
	}
	total := len(list)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)

	return c.JSON(dto.MovementListResponse{
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
		Movements: h.presenter.Movements(c.Context(), companyID, list[start:end]),
	})
}
