// Package adjustment implementa el coordinador de ajustes manuales de stock
// (suma, resta y corrección a valor absoluto), reusando el ledger y la misma
// unidad atómica que el coordinador de ventas.
package adjustment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-pro/internal/application/events"
	"github.com/tu-usuario/pos-pro/internal/application/ledger"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/numbering"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// UseCase coordina el commit de ajustes.
type UseCase struct {
	txRunner ledger.TxRunner
	products repository.ProductRepository
	log      *logger.Logger
	retry    ledger.RetryPolicy
	now      func() time.Time
}

// NewUseCase construye el coordinador. Comparte la política de reintentos de
// los commits de venta: dos ajustes simultáneos compiten por el número ADJ del
// día y el conflicto no debe llegar al usuario.
func NewUseCase(txRunner ledger.TxRunner, products repository.ProductRepository, log *logger.Logger, retry ledger.RetryPolicy) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		products: products,
		log:      log.Component("adjustment"),
		retry:    retry.WithDefaults(),
		now:      time.Now,
	}
}

// Line es una línea de ajuste. En CORRECTION, Quantity es el nuevo stock
// absoluto del producto; en ADDITION/SUBTRACTION es la cantidad a sumar/restar.
type Line struct {
	ProductID string
	Quantity  int64
	Note      string
}

// CommitInput entrada para Commit.
type CommitInput struct {
	Type    string // ADDITION | SUBTRACTION | CORRECTION
	Lines   []Line
	Reason  string
	ActorID string
}

// Commit registra el ajuste: número ADJ del día, cabecera + líneas, un asiento
// ADJUSTMENT o CORRECTION por línea y los eventos outbox, todo en una
// transacción. ADDITION suma; SUBTRACTION valida stock suficiente por línea
// (ErrInsufficientStock hace rollback completo); CORRECTION fija el absoluto y
// el ledger calcula el delta, que puede ser positivo, negativo o cero.
func (uc *UseCase) Commit(ctx context.Context, in CommitInput) (*entity.Adjustment, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	var adjustment *entity.Adjustment
	err := ledger.WithRetry(ctx, uc.log, uc.retry, func() error {
		return uc.txRunner.Run(ctx, func(repos ledger.TxRepos) error {
			now := uc.now()

			last, err := repos.Sequences.LastNumber(numbering.PrefixAdjustment, now)
			if err != nil {
				return err
			}
			number, err := numbering.Next(numbering.PrefixAdjustment, now, last)
			if err != nil {
				return err
			}

			adjustment = &entity.Adjustment{
				ID:               uuid.New().String(),
				AdjustmentNumber: number,
				Date:             now,
				Type:             in.Type,
				Reason:           in.Reason,
				CreatedBy:        in.ActorID,
				CreatedAt:        now,
			}
			if err := repos.Adjustments.Create(adjustment); err != nil {
				return err
			}

			for _, line := range in.Lines {
				item := &entity.AdjustmentItem{
					ID:           uuid.New().String(),
					AdjustmentID: adjustment.ID,
					ProductID:    line.ProductID,
					Quantity:     line.Quantity,
					Note:         line.Note,
				}
				if err := repos.Adjustments.CreateItem(item); err != nil {
					return err
				}

				appendIn := ledger.AppendInput{
					ProductID:     line.ProductID,
					ReferenceType: entity.ReferenceTypeADJUSTMENT,
					ReferenceID:   adjustment.ID,
					ActorID:       in.ActorID,
					Now:           now,
				}
				switch in.Type {
				case entity.AdjustmentTypeADDITION:
					appendIn.Type = entity.MutationTypeADJUSTMENT
					appendIn.Quantity = line.Quantity
				case entity.AdjustmentTypeSUBTRACTION:
					appendIn.Type = entity.MutationTypeADJUSTMENT
					appendIn.Quantity = -line.Quantity
				case entity.AdjustmentTypeCORRECTION:
					target := line.Quantity
					appendIn.Type = entity.MutationTypeCORRECTION
					appendIn.AbsoluteTarget = &target
				}

				mutation, err := ledger.AppendInTx(repos, appendIn)
				if err != nil {
					return err
				}

				product, err := repos.Products.GetByID(line.ProductID)
				if err != nil {
					return err
				}
				var minStock int64
				if product != nil {
					minStock = product.MinStock
				}
				ev, err := events.NewStockChanged(mutation, minStock, now)
				if err != nil {
					return err
				}
				if err := repos.Outbox.Create(ev); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("adjustment_id", adjustment.ID).
		Str("number", adjustment.AdjustmentNumber).
		Str("type", adjustment.Type).
		Int("lines", len(in.Lines)).
		Msg("ajuste commiteado")
	return adjustment, nil
}

func validate(in CommitInput) error {
	if !entity.ValidAdjustmentType(in.Type) {
		return fmt.Errorf("tipo %q: %w", in.Type, domain.ErrInvalidAdjustment)
	}
	if in.ActorID == "" || in.Reason == "" || len(in.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(in.Lines))
	for _, line := range in.Lines {
		if line.ProductID == "" {
			return domain.ErrInvalidInput
		}
		if seen[line.ProductID] {
			return domain.ErrInvalidInput
		}
		seen[line.ProductID] = true
		switch in.Type {
		case entity.AdjustmentTypeADDITION, entity.AdjustmentTypeSUBTRACTION:
			if line.Quantity <= 0 {
				return domain.ErrInvalidInput
			}
		case entity.AdjustmentTypeCORRECTION:
			// El objetivo absoluto puede ser cero (agotar) pero nunca negativo.
			if line.Quantity < 0 {
				return fmt.Errorf("producto %s: objetivo negativo: %w", line.ProductID, domain.ErrInvalidAdjustment)
			}
		}
	}
	return nil
}
