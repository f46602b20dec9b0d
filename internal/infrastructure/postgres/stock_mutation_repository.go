package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.StockMutationRepository = (*StockMutationRepo)(nil)

// StockMutationRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Solo INSERT y SELECT: las mutaciones son inmutables.
type StockMutationRepo struct {
	q Querier
}

// NewStockMutationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMutationRepository(q Querier) *StockMutationRepo {
	return &StockMutationRepo{q: q}
}

const mutationColumns = `id, product_id, type, quantity, previous_stock, resulting_stock, reference_type, reference_id, created_by, created_at`

// Create persiste una mutación de stock.
func (r *StockMutationRepo) Create(m *entity.StockMutation) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_mutations (` + mutationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, m.Type, m.Quantity, m.PreviousStock, m.ResultingStock,
		m.ReferenceType, m.ReferenceID, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock mutation: %w", err)
	}
	return nil
}

func (r *StockMutationRepo) list(query string, args ...any) ([]*entity.StockMutation, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock mutations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMutation
	for rows.Next() {
		var m entity.StockMutation
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity,
			&m.PreviousStock, &m.ResultingStock, &m.ReferenceType, &m.ReferenceID,
			&m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock mutation: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListByProduct lista mutaciones de un producto en orden de creación, paginado.
// El desempate por id hace el orden total y estable entre páginas.
func (r *StockMutationRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMutation, error) {
	query := `
		SELECT ` + mutationColumns + `
		FROM stock_mutations WHERE product_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`
	return r.list(query, productID, limit, offset)
}

// ListAllByProduct devuelve el ledger completo de un producto en orden de creación (replay).
func (r *StockMutationRepo) ListAllByProduct(productID string) ([]*entity.StockMutation, error) {
	query := `
		SELECT ` + mutationColumns + `
		FROM stock_mutations WHERE product_id = $1
		ORDER BY created_at ASC, id ASC`
	return r.list(query, productID)
}
