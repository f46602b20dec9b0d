package sale

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-pro/internal/application/events"
	"github.com/tu-usuario/pos-pro/internal/application/ledger"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/numbering"
)

// Commit convierte el carrito en una venta registrada. Pasos, todos dentro de
// una sola transacción: número de factura → cabecera + líneas → un asiento OUT
// del ledger por línea (con lock de fila por producto) → eventos outbox.
// Si cualquier paso falla, la transacción completa hace rollback: una venta
// nunca deja decrementos de stock parciales.
//
// La disponibilidad se valida contra la proyección en el momento del commit, no
// al armar el carrito: el stock puede cambiar entre ambos.
func (uc *UseCase) Commit(ctx context.Context, in CommitInput) (*entity.Sale, error) {
	if err := uc.validate(in); err != nil {
		return nil, err
	}

	// Pre-lectura fuera de la tx: existencia, producto activo y precio de
	// catálogo. El stock autoritativo se relee con lock dentro de la tx.
	productsByID := make(map[string]*entity.Product, len(in.Lines))
	for i := range in.Lines {
		line := &in.Lines[i]
		product, err := uc.products.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("producto %s: %w", line.ProductID, domain.ErrNotFound)
		}
		if !product.Active {
			return nil, fmt.Errorf("producto %s: %w", product.SKU, domain.ErrProductInactive)
		}
		if line.UnitPrice.IsZero() {
			line.UnitPrice = product.SellingPrice
		}
		productsByID[line.ProductID] = product
	}

	totals, err := computeTotals(in)
	if err != nil {
		return nil, err
	}

	var sale *entity.Sale
	err = uc.withRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(repos ledger.TxRepos) error {
			now := uc.now()

			// 1) Número de factura: leer el máximo del día dentro de la tx e
			// incrementar. El constraint único sobre invoice_number convierte
			// una carrera en ErrConflict y este callback se reintenta entero.
			last, err := repos.Sequences.LastNumber(numbering.PrefixInvoice, now)
			if err != nil {
				return err
			}
			invoiceNumber, err := numbering.Next(numbering.PrefixInvoice, now, last)
			if err != nil {
				return err
			}

			// 2) Cabecera y líneas
			sale = &entity.Sale{
				ID:            uuid.New().String(),
				InvoiceNumber: invoiceNumber,
				CustomerID:    in.CustomerID,
				CashierID:     in.CashierID,
				Date:          now,
				TotalItems:    totals.totalItems,
				Subtotal:      totals.subtotal,
				Discount:      in.Discount,
				Tax:           in.Tax,
				ServiceCharge: in.ServiceCharge,
				GrandTotal:    totals.grandTotal,
				PaymentMethod: in.PaymentMethod,
				PaymentStatus: totals.paymentStatus,
				PaidAmount:    in.PaidAmount,
				ChangeAmount:  totals.change,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := repos.Sales.Create(sale); err != nil {
				return err
			}
			for _, line := range in.Lines {
				item := &entity.SaleItem{
					ID:         uuid.New().String(),
					SaleID:     sale.ID,
					ProductID:  line.ProductID,
					Quantity:   line.Quantity,
					UnitPrice:  line.UnitPrice,
					Discount:   line.Discount,
					TotalPrice: lineTotal(line),
				}
				if err := repos.Sales.CreateItem(item); err != nil {
					return err
				}
			}

			// 3) Un asiento OUT por línea. ErrInsufficientStock aborta el
			// commit completo.
			outboxEvents := make([]*entity.OutboxEvent, 0, len(in.Lines)+1)
			for _, line := range in.Lines {
				mutation, err := ledger.AppendInTx(repos, ledger.AppendInput{
					ProductID:     line.ProductID,
					Type:          entity.MutationTypeOUT,
					Quantity:      -line.Quantity,
					ReferenceType: entity.ReferenceTypeSALE,
					ReferenceID:   sale.ID,
					ActorID:       in.CashierID,
					Now:           now,
				})
				if err != nil {
					return err
				}
				ev, err := events.NewStockChanged(mutation, productsByID[line.ProductID].MinStock, now)
				if err != nil {
					return err
				}
				outboxEvents = append(outboxEvents, ev)
			}

			// 4) Eventos en la misma tx; la entrega ocurre post-commit.
			completed, err := events.NewSaleCompleted(sale, now)
			if err != nil {
				return err
			}
			outboxEvents = append(outboxEvents, completed)
			for _, ev := range outboxEvents {
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
		Str("sale_id", sale.ID).
		Str("invoice", sale.InvoiceNumber).
		Str("grand_total", sale.GrandTotal.StringFixed(2)).
		Int("lines", len(in.Lines)).
		Msg("venta commiteada")
	return sale, nil
}

func (uc *UseCase) validate(in CommitInput) error {
	if in.CashierID == "" || len(in.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return domain.ErrInvalidInput
	}
	if in.Discount.IsNegative() || in.Tax.IsNegative() || in.ServiceCharge.IsNegative() || in.PaidAmount.IsNegative() {
		return domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(in.Lines))
	for _, line := range in.Lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
		if line.UnitPrice.IsNegative() || line.Discount.IsNegative() {
			return domain.ErrInvalidInput
		}
		// Una línea por producto: el lock por fila asume un asiento por producto.
		if seen[line.ProductID] {
			return domain.ErrInvalidInput
		}
		seen[line.ProductID] = true
	}
	return nil
}

type saleTotals struct {
	totalItems    int64
	subtotal      decimal.Decimal
	grandTotal    decimal.Decimal
	change        decimal.Decimal
	paymentStatus string
}

func lineTotal(line CartLine) decimal.Decimal {
	return line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)).Sub(line.Discount)
}

// computeTotals calcula subtotal = Σ(precio×cantidad − descuento de línea) y
// grand_total = subtotal − descuento + impuesto + servicio. En efectivo exige
// paid >= grand_total y calcula el cambio; en otros medios deriva el estado de
// pago (PAID/PARTIAL/UNPAID) del monto pagado.
func computeTotals(in CommitInput) (saleTotals, error) {
	t := saleTotals{subtotal: decimal.Zero, change: decimal.Zero}
	for _, line := range in.Lines {
		total := lineTotal(line)
		if total.IsNegative() {
			return t, domain.ErrInvalidInput
		}
		t.subtotal = t.subtotal.Add(total)
		t.totalItems += line.Quantity
	}
	t.grandTotal = t.subtotal.Sub(in.Discount).Add(in.Tax).Add(in.ServiceCharge)
	if t.grandTotal.IsNegative() {
		return t, domain.ErrInvalidInput
	}

	switch {
	case in.PaymentMethod == entity.PaymentMethodCASH:
		if in.PaidAmount.LessThan(t.grandTotal) {
			return t, fmt.Errorf("pagado %s, total %s: %w",
				in.PaidAmount.StringFixed(2), t.grandTotal.StringFixed(2), domain.ErrInsufficientPayment)
		}
		t.change = in.PaidAmount.Sub(t.grandTotal)
		t.paymentStatus = entity.PaymentStatusPAID
	case in.PaidAmount.GreaterThanOrEqual(t.grandTotal):
		t.paymentStatus = entity.PaymentStatusPAID
	case in.PaidAmount.IsPositive():
		t.paymentStatus = entity.PaymentStatusPARTIAL
	default:
		t.paymentStatus = entity.PaymentStatusUNPAID
	}
	return t, nil
}
