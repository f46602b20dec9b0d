package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// Constructores de eventos outbox. Se insertan dentro de la transacción del
// commit financiero; el dispatcher los entrega después (at-least-once). El ID
// del evento es la clave de deduplicación de los consumidores.

// NewStockChanged construye el evento stock.changed a partir de un asiento del
// ledger y el umbral mínimo del producto.
func NewStockChanged(m *entity.StockMutation, minStock int64, now time.Time) (*entity.OutboxEvent, error) {
	return newEvent(entity.EventStockChanged, entity.StockChangedPayload{
		ProductID:     m.ProductID,
		OldStock:      m.PreviousStock,
		NewStock:      m.ResultingStock,
		MinStock:      minStock,
		MutationID:    m.ID,
		MutationType:  m.Type,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
	}, now)
}

// NewSaleCompleted construye el evento sale.completed.
func NewSaleCompleted(sale *entity.Sale, now time.Time) (*entity.OutboxEvent, error) {
	return newEvent(entity.EventSaleCompleted, salePayload(sale), now)
}

// NewSaleCancelled construye el evento sale.cancelled.
func NewSaleCancelled(sale *entity.Sale, now time.Time) (*entity.OutboxEvent, error) {
	return newEvent(entity.EventSaleCancelled, salePayload(sale), now)
}

// NewLowStockCrossed construye el evento stock.low (cruce del umbral mínimo).
func NewLowStockCrossed(productID string, currentStock, minStock int64, now time.Time) (*entity.OutboxEvent, error) {
	return newEvent(entity.EventLowStockCrossed, entity.LowStockCrossedPayload{
		ProductID:    productID,
		CurrentStock: currentStock,
		MinStock:     minStock,
	}, now)
}

func salePayload(sale *entity.Sale) entity.SaleCompletedPayload {
	return entity.SaleCompletedPayload{
		SaleID:        sale.ID,
		InvoiceNumber: sale.InvoiceNumber,
		GrandTotal:    sale.GrandTotal.StringFixed(2),
		PaymentMethod: sale.PaymentMethod,
		CashierID:     sale.CashierID,
	}
}

func newEvent(eventType string, payload any, now time.Time) (*entity.OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar payload %s: %w", eventType, err)
	}
	return &entity.OutboxEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: now,
	}, nil
}
