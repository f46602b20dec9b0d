package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago.
const (
	PaymentMethodCASH     = "CASH"
	PaymentMethodCARD     = "CARD"
	PaymentMethodTRANSFER = "TRANSFER"
)

// Estados de pago de una venta.
const (
	PaymentStatusPAID      = "PAID"
	PaymentStatusPARTIAL   = "PARTIAL"
	PaymentStatusUNPAID    = "UNPAID"
	PaymentStatusCANCELLED = "CANCELLED"
)

// Sale representa la cabecera de una venta. Inmutable tras el commit, salvo la
// anulación (operación compensatoria explícita que nunca borra los asientos
// originales del ledger).
// Invariante: GrandTotal = Subtotal - Discount + Tax + ServiceCharge.
type Sale struct {
	ID            string
	InvoiceNumber string // único: INV-YYYYMMDD-NNNN
	CustomerID    string // opcional (venta de mostrador si vacío)
	CashierID     string
	Date          time.Time
	TotalItems    int64
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	GrandTotal    decimal.Decimal
	PaymentMethod string
	PaymentStatus string
	PaidAmount    decimal.Decimal
	ChangeAmount  decimal.Decimal // = PaidAmount - GrandTotal; solo relevante en efectivo
	CancelledAt   *time.Time
	CancelReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SaleItem es una línea de venta.
type SaleItem struct {
	ID         string
	SaleID     string
	ProductID  string
	Quantity   int64 // > 0
	UnitPrice  decimal.Decimal
	Discount   decimal.Decimal // descuento de línea
	TotalPrice decimal.Decimal // = UnitPrice*Quantity - Discount
}

// ValidPaymentMethod valida un método de pago.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCASH, PaymentMethodCARD, PaymentMethodTRANSFER:
		return true
	}
	return false
}
