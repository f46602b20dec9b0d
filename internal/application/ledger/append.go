package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// AppendInput describe un asiento a añadir al ledger de stock.
// Para CORRECTION, AbsoluteTarget es el nuevo stock absoluto y Quantity se
// ignora: el delta se calcula contra el stock bloqueado dentro de la tx.
type AppendInput struct {
	ProductID      string
	Type           string
	Quantity       int64 // delta con signo: negativo en salidas
	AbsoluteTarget *int64
	ReferenceType  string // SALE | PURCHASE | ADJUSTMENT
	ReferenceID    string
	ActorID        string
	Now            time.Time
}

// AppendInTx añade un asiento al ledger usando los repositorios de la
// transacción del caller: bloquea la fila del producto (SELECT FOR UPDATE), lee
// el stock autoritativo, calcula el resultante, inserta la StockMutation
// inmutable y actualiza la proyección Product.Stock. Nunca muta asientos pasados.
//
// Rechaza con ErrInsufficientStock si el resultante sería negativo (todos los
// tipos salvo CORRECTION, que fija un absoluto no negativo). Si retorna error,
// el caller debe hacer rollback de la transacción completa.
func AppendInTx(repos TxRepos, in AppendInput) (*entity.StockMutation, error) {
	if !entity.ValidMutationType(in.Type) || !entity.ValidReferenceType(in.ReferenceType) {
		return nil, domain.ErrInvalidInput
	}
	if in.ProductID == "" || in.ReferenceID == "" {
		return nil, domain.ErrInvalidInput
	}

	product, err := repos.Products.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	previous := product.Stock
	delta := in.Quantity
	if in.Type == entity.MutationTypeCORRECTION {
		if in.AbsoluteTarget == nil {
			return nil, domain.ErrInvalidAdjustment
		}
		if *in.AbsoluteTarget < 0 {
			return nil, domain.ErrInvalidAdjustment
		}
		delta = *in.AbsoluteTarget - previous
	}

	resulting := previous + delta
	if resulting < 0 {
		return nil, fmt.Errorf("producto %s: stock %d, delta %d: %w",
			in.ProductID, previous, delta, domain.ErrInsufficientStock)
	}

	mutation := &entity.StockMutation{
		ID:             uuid.New().String(),
		ProductID:      in.ProductID,
		Type:           in.Type,
		Quantity:       delta,
		PreviousStock:  previous,
		ResultingStock: resulting,
		ReferenceType:  in.ReferenceType,
		ReferenceID:    in.ReferenceID,
		CreatedBy:      in.ActorID,
		CreatedAt:      in.Now,
	}
	if err := repos.Mutations.Create(mutation); err != nil {
		return nil, err
	}
	if err := repos.Products.UpdateStock(in.ProductID, resulting); err != nil {
		return nil, err
	}
	return mutation, nil
}
