package sale

import (
	"context"

	"github.com/tu-usuario/pos-pro/internal/application/events"
	"github.com/tu-usuario/pos-pro/internal/application/ledger"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// Cancel anula una venta commiteada como operación compensatoria separada:
// añade asientos IN que reponen el stock de cada línea (los asientos OUT
// originales quedan intactos en el ledger) y pasa el estado de pago a
// CANCELLED. Todo en una transacción.
func (uc *UseCase) Cancel(ctx context.Context, saleID, reason, actorID string) error {
	if saleID == "" || actorID == "" {
		return domain.ErrInvalidInput
	}

	err := uc.withRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(repos ledger.TxRepos) error {
			now := uc.now()

			sale, err := repos.Sales.GetForUpdate(saleID)
			if err != nil {
				return err
			}
			if sale == nil {
				return domain.ErrSaleNotFound
			}
			if sale.PaymentStatus == entity.PaymentStatusCANCELLED {
				return domain.ErrAlreadyCancelled
			}

			items, err := repos.Sales.GetItemsBySaleID(saleID)
			if err != nil {
				return err
			}

			outboxEvents := make([]*entity.OutboxEvent, 0, len(items)+1)
			for _, item := range items {
				mutation, err := ledger.AppendInTx(repos, ledger.AppendInput{
					ProductID:     item.ProductID,
					Type:          entity.MutationTypeIN,
					Quantity:      item.Quantity,
					ReferenceType: entity.ReferenceTypeSALE,
					ReferenceID:   sale.ID,
					ActorID:       actorID,
					Now:           now,
				})
				if err != nil {
					return err
				}
				product, err := repos.Products.GetByID(item.ProductID)
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
				outboxEvents = append(outboxEvents, ev)
			}

			sale.PaymentStatus = entity.PaymentStatusCANCELLED
			sale.CancelledAt = &now
			sale.CancelReason = reason
			sale.UpdatedAt = now
			if err := repos.Sales.UpdateCancelled(sale); err != nil {
				return err
			}

			cancelled, err := events.NewSaleCancelled(sale, now)
			if err != nil {
				return err
			}
			outboxEvents = append(outboxEvents, cancelled)
			for _, ev := range outboxEvents {
				if err := repos.Outbox.Create(ev); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	uc.log.Info().Str("sale_id", saleID).Str("reason", reason).Msg("venta anulada")
	return nil
}
