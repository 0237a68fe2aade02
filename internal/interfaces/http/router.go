package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *inventory.RegisterMovementUseCase
	Reports          *inventory.ReportUseCase
	Overview         *inventory.OverviewUseCase
	Presenter        *Presenter
	CatalogCache     CatalogCacheInvalidator // nil = sin caché, la ruta no se registra
	JWTSecret        string
	LedgerDriver     string
	Logger           *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestIDMiddleware(deps.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Ledger: deps.LedgerDriver})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleStorekeeper)
	readers := RequireRole()

	// Ledger
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Reports, deps.Presenter)
	invGroup.Get("/movements", readers, inventoryHandler.ListMovements)
	invGroup.Post("/movements", writers, inventoryHandler.RegisterMovement)
	invGroup.Post("/movements/:id/corrections", RequireRole(jwt.RoleAdmin), inventoryHandler.CorrectMovement)
	invGroup.Post("/transfers", writers, inventoryHandler.Transfer)
	invGroup.Post("/transfers/:id/receipt", writers, inventoryHandler.ReceiveTransfer)

	// Reportes (solo lectura, cualquier rol)
	reportHandler := NewReportHandler(deps.Reports, deps.Overview, deps.Presenter)
	invGroup.Get("/stock-levels", readers, reportHandler.StockLevels)
	invGroup.Get("/valuation", readers, reportHandler.Valuation)
	invGroup.Get("/abc", readers, reportHandler.ABC)
	invGroup.Get("/aging", readers, reportHandler.Aging)
	invGroup.Get("/attention", readers, reportHandler.Attention)
	invGroup.Get("/transfers", readers, reportHandler.Transfers)
	invGroup.Get("/overview", readers, reportHandler.Overview)

	// Catálogo
	if deps.CatalogCache != nil {
		catalogHandler := NewCatalogHandler(deps.CatalogCache)
		protected.Delete("/catalog/cache", RequireRole(jwt.RoleAdmin), catalogHandler.InvalidateCache)
	}
}
