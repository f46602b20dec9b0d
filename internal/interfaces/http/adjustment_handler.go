package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pos-pro/internal/application/adjustment"
	"github.com/tu-usuario/pos-pro/internal/application/dto"
)

// AdjustmentHandler maneja las peticiones HTTP de ajustes de stock (protegido).
type AdjustmentHandler struct {
	uc *adjustment.UseCase
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(uc *adjustment.UseCase) *AdjustmentHandler {
	return &AdjustmentHandler{uc: uc}
}

// Commit registra un ajuste: POST /api/v1/adjustments.
func (h *AdjustmentHandler) Commit(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CommitAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	lines := make([]adjustment.Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, adjustment.Line{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Note:      l.Note,
		})
	}
	adj, err := h.uc.Commit(c.Context(), adjustment.CommitInput{
		Type:    in.Type,
		Lines:   lines,
		Reason:  in.Reason,
		ActorID: actorID,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustmentResponse{
		ID:               adj.ID,
		AdjustmentNumber: adj.AdjustmentNumber,
		Type:             adj.Type,
		Reason:           adj.Reason,
		Date:             adj.Date.Format("2006-01-02"),
	})
}
