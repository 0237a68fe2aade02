package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// CatalogCacheInvalidator borra la caché del catálogo de una empresa.
type CatalogCacheInvalidator interface {
	Invalidate(ctx context.Context, companyID string) error
}

// CatalogHandler administración del catálogo cacheado.
type CatalogHandler struct {
	cache CatalogCacheInvalidator
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(cache CatalogCacheInvalidator) *CatalogHandler {
	return &CatalogHandler{cache: cache}
}

// InvalidateCache godoc
// @Summary      Vaciar la caché del catálogo
// @Description  Se llama después de aplicar el SQL generado por seed_catalog para que libros y sedes se relean.
// @Tags         catalog
// @Security     Bearer
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/catalog/cache [delete]
func (h *CatalogHandler) InvalidateCache(c *fiber.Ctx) error {
	if err := h.cache.Invalidate(c.Context(), GetCompanyID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
