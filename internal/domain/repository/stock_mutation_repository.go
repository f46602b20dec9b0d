package repository

import "github.com/tu-usuario/pos-pro/internal/domain/entity"

// StockMutationRepository define el puerto del ledger de stock: solo inserta y
// lee. No existe Update ni Delete: las entradas son inmutables.
type StockMutationRepository interface {
	Create(mutation *entity.StockMutation) error
	// ListByProduct lista mutaciones de un producto en orden de creación
	// ascendente (el orden del replay), con paginación.
	ListByProduct(productID string, limit, offset int) ([]*entity.StockMutation, error)
	// ListAllByProduct devuelve el ledger completo de un producto en orden de
	// creación, para replay/auditoría.
	ListAllByProduct(productID string) ([]*entity.StockMutation, error)
}
