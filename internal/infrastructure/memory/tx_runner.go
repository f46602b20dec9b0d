package memory

import (
	"context"
	"sync"

	"github.com/tu-usuario/pos-pro/internal/application/ledger"
)

// TxRunner implementa ledger.TxRunner sobre un Store: toma un snapshot del
// estado, ejecuta el callback y, si devuelve error, restaura el snapshot. Las
// transacciones se serializan con un mutex, lo que reproduce (con garantía más
// fuerte) el efecto del SELECT FOR UPDATE del adaptador postgres.
type TxRunner struct {
	store *Store
	txMu  sync.Mutex

	// BeforeCommit, si está definido, se evalúa tras el callback y antes de
	// confirmar. Un error fuerza el rollback: permite inyectar conflictos de
	// commit en los tests de reintento.
	BeforeCommit func() error
}

var _ ledger.TxRunner = (*TxRunner)(nil)

// NewTxRunner construye el runner sobre el Store dado.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Repos devuelve el conjunto de repositorios atados al Store.
func (r *TxRunner) Repos() ledger.TxRepos {
	return ledger.TxRepos{
		Products:    NewProductRepository(r.store),
		Mutations:   NewStockMutationRepository(r.store),
		Sales:       NewSaleRepository(r.store),
		Adjustments: NewAdjustmentRepository(r.store),
		Sequences:   NewSequenceRepository(r.store),
		Outbox:      NewOutboxRepository(r.store),
	}
}

func (r *TxRunner) Run(ctx context.Context, fn func(repos ledger.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snap := r.store.snapshot()
	err := fn(r.Repos())
	if err == nil && r.BeforeCommit != nil {
		err = r.BeforeCommit()
	}
	if err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}
