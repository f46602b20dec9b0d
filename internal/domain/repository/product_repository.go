package repository

import "github.com/tu-usuario/pos-pro/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// El campo Stock solo se actualiza vía UpdateStock, dentro de la misma
// transacción que inserta la StockMutation correspondiente.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) para que dos
	// commits concurrentes no lean el mismo stock.
	GetForUpdate(id string) (*entity.Product, error)
	UpdateStock(productID string, stock int64) error
}
