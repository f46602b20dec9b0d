// Package inventory expone la proyección de inventario: el stock actual de
// cada producto materializado en la fila de Product que el ledger mantiene.
// Es una API de lectura sobre el mismo almacenamiento que escribe el ledger,
// nunca un valor cacheado o recalculado aparte.
package inventory

import (
	"context"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// StockStatus estado de stock de un producto según la proyección.
type StockStatus struct {
	ProductID  string
	SKU        string
	Stock      int64
	MinStock   int64
	LowStock   bool // 0 < stock <= min_stock
	OutOfStock bool // stock <= 0
}

// UseCase lecturas de la proyección de inventario.
type UseCase struct {
	products  repository.ProductRepository
	mutations repository.StockMutationRepository
}

// NewUseCase construye la proyección.
func NewUseCase(products repository.ProductRepository, mutations repository.StockMutationRepository) *UseCase {
	return &UseCase{products: products, mutations: mutations}
}

// CurrentStock devuelve el stock actual de un producto.
func (uc *UseCase) CurrentStock(ctx context.Context, productID string) (int64, error) {
	_ = ctx
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	return product.Stock, nil
}

// Status devuelve stock, umbral y las banderas de stock bajo/agotado.
func (uc *UseCase) Status(ctx context.Context, productID string) (*StockStatus, error) {
	_ = ctx
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return &StockStatus{
		ProductID:  product.ID,
		SKU:        product.SKU,
		Stock:      product.Stock,
		MinStock:   product.MinStock,
		LowStock:   product.IsLowStock(),
		OutOfStock: product.IsOutOfStock(),
	}, nil
}

// Ledger devuelve el ledger de un producto en orden de creación, paginado.
func (uc *UseCase) Ledger(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMutation, error) {
	_ = ctx
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.mutations.ListByProduct(productID, limit, offset)
}
