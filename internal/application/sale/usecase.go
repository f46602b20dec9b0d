// Package sale implementa el coordinador transaccional de ventas: convierte un
// carrito validado en una venta registrada, descuenta inventario vía el ledger
// y encola las notificaciones, todo como una sola unidad atómica.
package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-pro/internal/application/ledger"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// UseCase coordina el commit y la anulación de ventas.
type UseCase struct {
	txRunner ledger.TxRunner
	products repository.ProductRepository
	sales    repository.SaleRepository
	log      *logger.Logger
	retry    ledger.RetryPolicy
	now      func() time.Time
}

// NewUseCase construye el coordinador. Los repositorios van atados al pool; las
// escrituras siempre pasan por txRunner.
func NewUseCase(
	txRunner ledger.TxRunner,
	products repository.ProductRepository,
	sales repository.SaleRepository,
	log *logger.Logger,
	retry ledger.RetryPolicy,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		products: products,
		sales:    sales,
		log:      log.Component("sale"),
		retry:    retry.WithDefaults(),
		now:      time.Now,
	}
}

// CartLine es una línea del carrito en el momento del checkout. UnitPrice en
// cero toma el precio de venta del catálogo.
type CartLine struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal // descuento de línea, monto absoluto
}

// CommitInput entrada para Commit.
type CommitInput struct {
	CashierID     string
	CustomerID    string // opcional
	Lines         []CartLine
	Discount      decimal.Decimal // descuento a nivel de orden
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	PaymentMethod string
	PaidAmount    decimal.Decimal
}

// GetByID devuelve una venta con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*entity.Sale, []*entity.SaleItem, error) {
	_ = ctx
	sale, err := uc.sales.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if sale == nil {
		return nil, nil, domain.ErrSaleNotFound
	}
	items, err := uc.sales.GetItemsBySaleID(id)
	if err != nil {
		return nil, nil, err
	}
	return sale, items, nil
}

func (uc *UseCase) withRetry(ctx context.Context, op func() error) error {
	return ledger.WithRetry(ctx, uc.log, uc.retry, op)
}
