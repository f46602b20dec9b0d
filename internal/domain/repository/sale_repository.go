package repository

import "github.com/tu-usuario/pos-pro/internal/domain/entity"

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
// invoice_number lleva constraint único en la tabla: es el respaldo de
// concurrencia del generador de secuencias.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	GetByID(id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) para anulaciones.
	GetForUpdate(id string) (*entity.Sale, error)
	GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error)
	// UpdateCancelled persiste la anulación: payment_status, cancelled_at y
	// cancel_reason. Ningún otro campo de la venta es mutable tras el commit.
	UpdateCancelled(sale *entity.Sale) error
}
