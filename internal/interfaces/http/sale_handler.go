package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/sale"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	uc *sale.UseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sale.UseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Commit registra una venta: POST /api/v1/sales.
func (h *SaleHandler) Commit(c *fiber.Ctx) error {
	cashierID := GetUserID(c)
	if cashierID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CommitSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	lines := make([]sale.CartLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, sale.CartLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
		})
	}
	committed, err := h.uc.Commit(c.Context(), sale.CommitInput{
		CashierID:     cashierID,
		CustomerID:    in.CustomerID,
		Lines:         lines,
		Discount:      in.Discount,
		Tax:           in.Tax,
		ServiceCharge: in.ServiceCharge,
		PaymentMethod: in.PaymentMethod,
		PaidAmount:    in.PaidAmount,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(committed, nil))
}

// Cancel anula una venta: POST /api/v1/sales/:id/cancel.
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CancelSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Cancel(c.Context(), c.Params("id"), in.Reason, actorID); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "venta anulada"})
}

// GetByID devuelve una venta con sus líneas: GET /api/v1/sales/:id.
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	committed, items, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toSaleResponse(committed, items))
}

func toSaleResponse(s *entity.Sale, items []*entity.SaleItem) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID,
		CashierID:     s.CashierID,
		Date:          s.Date.Format("2006-01-02"),
		TotalItems:    s.TotalItems,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Tax:           s.Tax,
		ServiceCharge: s.ServiceCharge,
		GrandTotal:    s.GrandTotal,
		PaymentMethod: s.PaymentMethod,
		PaymentStatus: s.PaymentStatus,
		PaidAmount:    s.PaidAmount,
		ChangeAmount:  s.ChangeAmount,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Discount:   it.Discount,
			TotalPrice: it.TotalPrice,
		})
	}
	return resp
}
