package repository

import "github.com/tu-usuario/pos-pro/internal/domain/entity"

// AdjustmentRepository define el puerto de persistencia para Adjustment y sus
// líneas. adjustment_number lleva constraint único en la tabla.
type AdjustmentRepository interface {
	Create(adjustment *entity.Adjustment) error
	CreateItem(item *entity.AdjustmentItem) error
	GetByID(id string) (*entity.Adjustment, error)
	GetItemsByAdjustmentID(adjustmentID string) ([]*entity.AdjustmentItem, error)
}
