package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/application/ledger"
)

// InventoryHandler maneja las lecturas de la proyección de inventario y la
// auditoría del ledger (protegido).
type InventoryHandler struct {
	uc     *inventory.UseCase
	replay *ledger.ReplayService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase, replay *ledger.ReplayService) *InventoryHandler {
	return &InventoryHandler{uc: uc, replay: replay}
}

// Stock devuelve el estado de stock de un producto: GET /api/v1/products/:id/stock.
func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	status, err := h.uc.Status(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.StockStatusResponse{
		ProductID:  status.ProductID,
		SKU:        status.SKU,
		Stock:      status.Stock,
		MinStock:   status.MinStock,
		LowStock:   status.LowStock,
		OutOfStock: status.OutOfStock,
	})
}

// Ledger devuelve el ledger de un producto paginado: GET /api/v1/products/:id/ledger.
func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)
	mutations, err := h.uc.Ledger(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.StockMutationResponse, 0, len(mutations))
	for _, m := range mutations {
		out = append(out, dto.StockMutationResponse{
			ID:             m.ID,
			ProductID:      m.ProductID,
			Type:           m.Type,
			Quantity:       m.Quantity,
			PreviousStock:  m.PreviousStock,
			ResultingStock: m.ResultingStock,
			ReferenceType:  m.ReferenceType,
			ReferenceID:    m.ReferenceID,
			CreatedBy:      m.CreatedBy,
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(out)
}

// Reconcile verifica que el replay del ledger coincide con el stock vivo:
// GET /api/v1/products/:id/reconcile. Herramienta de auditoría para operadores.
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	if err := h.replay.Reconcile(c.Context(), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "message": "ledger y proyección consistentes"})
}
