package ledger

import (
	"context"

	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a una misma transacción de BD. Los
// coordinadores de venta y ajuste reciben este conjunto dentro del callback del
// TxRunner: todo lo que escriban con él commitea o hace rollback como una unidad.
type TxRepos struct {
	Products    repository.ProductRepository
	Mutations   repository.StockMutationRepository
	Sales       repository.SaleRepository
	Adjustments repository.AdjustmentRepository
	Sequences   repository.SequenceRepository
	Outbox      repository.OutboxRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del núcleo: cabecera,
// líneas, asientos del ledger, update de stock y eventos outbox commitean juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
