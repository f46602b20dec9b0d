package dto

import "github.com/shopspring/decimal"

// ErrorResponse cuerpo de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CommitSaleRequest petición de commit de venta.
type CommitSaleRequest struct {
	CustomerID    string            `json:"customer_id"`
	Lines         []SaleLineRequest `json:"lines"`
	Discount      decimal.Decimal   `json:"discount"`
	Tax           decimal.Decimal   `json:"tax"`
	ServiceCharge decimal.Decimal   `json:"service_charge"`
	PaymentMethod string            `json:"payment_method"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
}

// SaleLineRequest línea del carrito. unit_price en 0 toma el precio de catálogo.
type SaleLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// CancelSaleRequest petición de anulación.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// SaleResponse respuesta de venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	CustomerID    string             `json:"customer_id,omitempty"`
	CashierID     string             `json:"cashier_id"`
	Date          string             `json:"date"`
	TotalItems    int64              `json:"total_items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Tax           decimal.Decimal    `json:"tax"`
	ServiceCharge decimal.Decimal    `json:"service_charge"`
	GrandTotal    decimal.Decimal    `json:"grand_total"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	PaidAmount    decimal.Decimal    `json:"paid_amount"`
	ChangeAmount  decimal.Decimal    `json:"change_amount"`
	Items         []SaleItemResponse `json:"items,omitempty"`
}

// SaleItemResponse línea de venta en la respuesta.
type SaleItemResponse struct {
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Discount   decimal.Decimal `json:"discount"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CommitAdjustmentRequest petición de ajuste de stock.
type CommitAdjustmentRequest struct {
	Type   string                  `json:"type"` // ADDITION | SUBTRACTION | CORRECTION
	Reason string                  `json:"reason"`
	Lines  []AdjustmentLineRequest `json:"lines"`
}

// AdjustmentLineRequest línea de ajuste. En CORRECTION, quantity es el nuevo
// stock absoluto.
type AdjustmentLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Note      string `json:"note"`
}

// AdjustmentResponse respuesta de ajuste.
type AdjustmentResponse struct {
	ID               string `json:"id"`
	AdjustmentNumber string `json:"adjustment_number"`
	Type             string `json:"type"`
	Reason           string `json:"reason"`
	Date             string `json:"date"`
}

// StockStatusResponse estado de stock de un producto.
type StockStatusResponse struct {
	ProductID  string `json:"product_id"`
	SKU        string `json:"sku"`
	Stock      int64  `json:"stock"`
	MinStock   int64  `json:"min_stock"`
	LowStock   bool   `json:"low_stock"`
	OutOfStock bool   `json:"out_of_stock"`
}

// StockMutationResponse asiento del ledger en la respuesta.
type StockMutationResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	Type           string `json:"type"`
	Quantity       int64  `json:"quantity"`
	PreviousStock  int64  `json:"previous_stock"`
	ResultingStock int64  `json:"resulting_stock"`
	ReferenceType  string `json:"reference_type"`
	ReferenceID    string `json:"reference_id"`
	CreatedBy      string `json:"created_by"`
	CreatedAt      string `json:"created_at"`
}
