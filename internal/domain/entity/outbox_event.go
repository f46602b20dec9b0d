package entity

import (
	"encoding/json"
	"time"
)

// Tipos de eventos emitidos por el núcleo (consumidos post-commit por el dispatcher).
const (
	EventSaleCompleted   = "sale.completed"
	EventSaleCancelled   = "sale.cancelled"
	EventStockChanged    = "stock.changed"
	EventLowStockCrossed = "stock.low"
)

// OutboxEvent es una notificación pendiente de entrega. Se inserta en la misma
// transacción que el commit financiero y se entrega después, at-least-once; los
// consumidores deduplican por ID.
type OutboxEvent struct {
	ID          string
	Type        string
	Payload     json.RawMessage
	Attempts    int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// StockChangedPayload es el payload de stock.changed: el delta de la proyección
// que observa el monitor de stock bajo.
type StockChangedPayload struct {
	ProductID     string `json:"product_id"`
	OldStock      int64  `json:"old_stock"`
	NewStock      int64  `json:"new_stock"`
	MinStock      int64  `json:"min_stock"`
	MutationID    string `json:"mutation_id"`
	MutationType  string `json:"mutation_type"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
}

// SaleCompletedPayload es el payload de sale.completed y sale.cancelled.
type SaleCompletedPayload struct {
	SaleID        string `json:"sale_id"`
	InvoiceNumber string `json:"invoice_number"`
	GrandTotal    string `json:"grand_total"`
	PaymentMethod string `json:"payment_method"`
	CashierID     string `json:"cashier_id"`
}

// LowStockCrossedPayload es el payload de stock.low.
type LowStockCrossedPayload struct {
	ProductID    string `json:"product_id"`
	CurrentStock int64  `json:"current_stock"`
	MinStock     int64  `json:"min_stock"`
}
