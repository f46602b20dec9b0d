package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo implementación de AdjustmentRepository sobre PostgreSQL (usable con pool o tx).
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create persiste la cabecera del ajuste. adjustment_number lleva constraint único.
func (r *AdjustmentRepo) Create(adjustment *entity.Adjustment) error {
	query := `
		INSERT INTO adjustments (id, adjustment_number, date, type, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		adjustment.ID, adjustment.AdjustmentNumber, adjustment.Date,
		adjustment.Type, adjustment.Reason, adjustment.CreatedBy, adjustment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create adjustment: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de ajuste.
func (r *AdjustmentRepo) CreateItem(item *entity.AdjustmentItem) error {
	query := `
		INSERT INTO adjustment_items (id, adjustment_id, product_id, quantity, note)
		VALUES ($1, $2, $3, $4, $5)`
	note := (*string)(nil)
	if item.Note != "" {
		note = &item.Note
	}
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.AdjustmentID, item.ProductID, item.Quantity, note,
	)
	if err != nil {
		return fmt.Errorf("create adjustment item: %w", err)
	}
	return nil
}

// GetByID obtiene un ajuste por ID.
func (r *AdjustmentRepo) GetByID(id string) (*entity.Adjustment, error) {
	query := `
		SELECT id, adjustment_number, date, type, reason, created_by, created_at
		FROM adjustments WHERE id = $1`
	var a entity.Adjustment
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&a.ID, &a.AdjustmentNumber, &a.Date, &a.Type, &a.Reason, &a.CreatedBy, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	return &a, nil
}

// GetItemsByAdjustmentID devuelve las líneas de un ajuste.
func (r *AdjustmentRepo) GetItemsByAdjustmentID(adjustmentID string) ([]*entity.AdjustmentItem, error) {
	query := `
		SELECT id, adjustment_id, product_id, quantity, note
		FROM adjustment_items WHERE adjustment_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("get adjustment items: %w", err)
	}
	defer rows.Close()
	var items []*entity.AdjustmentItem
	for rows.Next() {
		var it entity.AdjustmentItem
		var note *string
		if err := rows.Scan(&it.ID, &it.AdjustmentID, &it.ProductID, &it.Quantity, &note); err != nil {
			return nil, fmt.Errorf("scan adjustment item: %w", err)
		}
		if note != nil {
			it.Note = *note
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}
