package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pos-pro/internal/application/adjustment"
	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/application/ledger"
	"github.com/tu-usuario/pos-pro/internal/application/sale"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SaleUC       *sale.UseCase
	AdjustmentUC *adjustment.UseCase
	InventoryUC  *inventory.UseCase
	Replay       *ledger.ReplayService
	JWTSecret    string
}

// Router registra las rutas de la API. Todas las operaciones del núcleo exigen
// un actor autenticado (Bearer Token).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1", AuthMiddleware(deps.JWTSecret))

	saleHandler := NewSaleHandler(deps.SaleUC)
	sales := api.Group("/sales")
	sales.Post("/", saleHandler.Commit)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/cancel", saleHandler.Cancel)

	adjustmentHandler := NewAdjustmentHandler(deps.AdjustmentUC)
	api.Post("/adjustments", adjustmentHandler.Commit)

	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.Replay)
	products := api.Group("/products")
	products.Get("/:id/stock", inventoryHandler.Stock)
	products.Get("/:id/ledger", inventoryHandler.Ledger)
	products.Get("/:id/reconcile", inventoryHandler.Reconcile)
}
