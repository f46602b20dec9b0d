package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/pos-pro/internal/application/ledger"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Los errores
// de unicidad y de concurrencia detectados en el commit se traducen a
// domain.ErrConflict para que los coordinadores reintenten desde cero.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit
// o Rollback. No existe estado intermedio visible para otras transacciones.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ledger.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := ledger.TxRepos{
		Products:    NewProductRepository(tx),
		Mutations:   NewStockMutationRepository(tx),
		Sales:       NewSaleRepository(tx),
		Adjustments: NewAdjustmentRepository(tx),
		Sequences:   NewSequenceRepository(tx),
		Outbox:      NewOutboxRepository(tx),
	}

	if err := fn(repos); err != nil {
		return mapConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		if mapped := mapConflict(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
