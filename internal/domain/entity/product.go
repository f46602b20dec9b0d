package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo referenciado por el núcleo de ventas.
// Stock es una proyección materializada: solo lo muta el ledger de stock dentro de
// la misma transacción que inserta la StockMutation. Escrituras directas en otro
// lugar violan el diseño.
type Product struct {
	ID            string
	SKU           string // código único
	Name          string
	Active        bool
	Stock         int64 // nunca negativo
	MinStock      int64 // umbral de alerta de stock bajo
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock indica stock bajo: 0 < stock <= min_stock.
func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.MinStock
}

// IsOutOfStock indica stock agotado.
func (p *Product) IsOutOfStock() bool {
	return p.Stock <= 0
}
