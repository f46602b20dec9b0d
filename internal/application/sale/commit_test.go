package sale_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/application/ledger"
	"github.com/tu-usuario/pos-pro/internal/application/sale"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/memory"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	cashierID = "00000000-0000-0000-0000-0000000000c1"
	prodCafe  = "00000000-0000-0000-0000-0000000000p1"
	prodPan   = "00000000-0000-0000-0000-0000000000p2"
)

type fixture struct {
	store    *memory.Store
	txRunner *memory.TxRunner
	uc       *sale.UseCase
}

// buildFixture siembra dos productos y construye el coordinador con el runner
// en memoria.
func buildFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutProduct(&entity.Product{
		ID:           prodCafe,
		SKU:          "CAFE-500",
		Name:         "Café molido 500g",
		Active:       true,
		Stock:        10,
		MinStock:     3,
		SellingPrice: decimal.NewFromFloat(25.50),
	})
	store.PutProduct(&entity.Product{
		ID:           prodPan,
		SKU:          "PAN-001",
		Name:         "Pan artesanal",
		Active:       true,
		Stock:        40,
		MinStock:     10,
		SellingPrice: decimal.NewFromFloat(4.00),
	})
	txRunner := memory.NewTxRunner(store)
	uc := sale.NewUseCase(
		txRunner,
		memory.NewProductRepository(store),
		memory.NewSaleRepository(store),
		logger.Nop(),
		ledger.RetryPolicy{Attempts: 3, Backoff: time.Millisecond},
	)
	return &fixture{store: store, txRunner: txRunner, uc: uc}
}

func cashInput(paid float64, lines ...sale.CartLine) sale.CommitInput {
	return sale.CommitInput{
		CashierID:     cashierID,
		Lines:         lines,
		PaymentMethod: entity.PaymentMethodCASH,
		PaidAmount:    decimal.NewFromFloat(paid),
	}
}

func stockOf(t *testing.T, store *memory.Store, productID string) int64 {
	t.Helper()
	p, err := memory.NewProductRepository(store).GetByID(productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Commit: aritmética de totales
// ──────────────────────────────────────────────────────────────────────────────

// Vector exacto: 2×25.50 + 3×4.00 = 63.00; descuento 3.00, impuesto 6.00,
// servicio 1.00 → total 67.00; pagado 70.00 en efectivo → cambio 3.00.
func TestCommit_VectorExactoTotales(t *testing.T) {
	f := buildFixture(t)

	in := cashInput(70.00,
		sale.CartLine{ProductID: prodCafe, Quantity: 2},
		sale.CartLine{ProductID: prodPan, Quantity: 3},
	)
	in.Discount = decimal.NewFromFloat(3.00)
	in.Tax = decimal.NewFromFloat(6.00)
	in.ServiceCharge = decimal.NewFromFloat(1.00)

	s, err := f.uc.Commit(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "63.00", s.Subtotal.StringFixed(2))
	assert.Equal(t, "67.00", s.GrandTotal.StringFixed(2))
	assert.Equal(t, "3.00", s.ChangeAmount.StringFixed(2))
	assert.Equal(t, entity.PaymentStatusPAID, s.PaymentStatus)
	assert.Equal(t, int64(5), s.TotalItems)

	// La proyección refleja los decrementos.
	assert.Equal(t, int64(8), stockOf(t, f.store, prodCafe))
	assert.Equal(t, int64(37), stockOf(t, f.store, prodPan))
}

// El descuento de línea se resta del total de la línea.
func TestCommit_DescuentoDeLinea(t *testing.T) {
	f := buildFixture(t)

	line := sale.CartLine{ProductID: prodCafe, Quantity: 2, Discount: decimal.NewFromFloat(1.00)}
	s, err := f.uc.Commit(context.Background(), cashInput(50.00, line))
	require.NoError(t, err)
	assert.Equal(t, "50.00", s.Subtotal.StringFixed(2)) // 2×25.50 − 1.00

	items, err := memory.NewSaleRepository(f.store).GetItemsBySaleID(s.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "50.00", items[0].TotalPrice.StringFixed(2))
}

// En efectivo, pagar menos que el total rechaza la venta sin tocar el stock.
func TestCommit_EfectivoInsuficiente(t *testing.T) {
	f := buildFixture(t)

	_, err := f.uc.Commit(context.Background(),
		cashInput(20.00, sale.CartLine{ProductID: prodCafe, Quantity: 1}))
	require.ErrorIs(t, err, domain.ErrInsufficientPayment)
	assert.Equal(t, int64(10), stockOf(t, f.store, prodCafe))
}

// Con tarjeta el estado de pago se deriva del monto: 0 → UNPAID, parcial →
// PARTIAL, completo → PAID.
func TestCommit_EstadoDePagoNoEfectivo(t *testing.T) {
	f := buildFixture(t)

	cases := []struct {
		paid   float64
		status string
	}{
		{0, entity.PaymentStatusUNPAID},
		{10.00, entity.PaymentStatusPARTIAL},
		{25.50, entity.PaymentStatusPAID},
	}
	for _, tc := range cases {
		in := sale.CommitInput{
			CashierID:     cashierID,
			Lines:         []sale.CartLine{{ProductID: prodCafe, Quantity: 1}},
			PaymentMethod: entity.PaymentMethodCARD,
			PaidAmount:    decimal.NewFromFloat(tc.paid),
		}
		s, err := f.uc.Commit(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, tc.status, s.PaymentStatus, "pagado %.2f", tc.paid)
	}
}

// Sin precio explícito en la línea, se toma el precio de venta del catálogo.
func TestCommit_PrecioDeCatalogo(t *testing.T) {
	f := buildFixture(t)

	s, err := f.uc.Commit(context.Background(),
		cashInput(30.00, sale.CartLine{ProductID: prodCafe, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, "25.50", s.Subtotal.StringFixed(2))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Commit: validación y atomicidad
// ──────────────────────────────────────────────────────────────────────────────

func TestCommit_ValidacionDeEntrada(t *testing.T) {
	f := buildFixture(t)
	ctx := context.Background()

	// Carrito vacío.
	_, err := f.uc.Commit(ctx, cashInput(10.00))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cantidad no positiva.
	_, err = f.uc.Commit(ctx, cashInput(10.00, sale.CartLine{ProductID: prodCafe, Quantity: 0}))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Método de pago desconocido.
	in := cashInput(10.00, sale.CartLine{ProductID: prodCafe, Quantity: 1})
	in.PaymentMethod = "BARTER"
	_, err = f.uc.Commit(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Producto repetido en dos líneas.
	_, err = f.uc.Commit(ctx, cashInput(60.00,
		sale.CartLine{ProductID: prodCafe, Quantity: 1},
		sale.CartLine{ProductID: prodCafe, Quantity: 1},
	))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un producto inactivo rechaza la venta completa.
func TestCommit_ProductoInactivo(t *testing.T) {
	f := buildFixture(t)
	f.store.PutProduct(&entity.Product{
		ID:           "p-inactivo",
		SKU:          "OLD-001",
		Active:       false,
		Stock:        100,
		SellingPrice: decimal.NewFromFloat(1.00),
	})

	_, err := f.uc.Commit(context.Background(), cashInput(60.00,
		sale.CartLine{ProductID: prodCafe, Quantity: 1},
		sale.CartLine{ProductID: "p-inactivo", Quantity: 1},
	))
	require.ErrorIs(t, err, domain.ErrProductInactive)
	assert.Equal(t, int64(10), stockOf(t, f.store, prodCafe))
}

// Si una línea no tiene stock suficiente, la transacción entera hace rollback:
// ni venta, ni asientos, ni eventos, ni decremento parcial de la primera línea.
func TestCommit_RollbackSinEstadoParcial(t *testing.T) {
	f := buildFixture(t)

	_, err := f.uc.Commit(context.Background(), cashInput(1000.00,
		sale.CartLine{ProductID: prodPan, Quantity: 5},   // alcanza
		sale.CartLine{ProductID: prodCafe, Quantity: 11}, // no alcanza (stock 10)
	))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(40), stockOf(t, f.store, prodPan))
	assert.Equal(t, int64(10), stockOf(t, f.store, prodCafe))

	mutations, _ := memory.NewStockMutationRepository(f.store).ListAllByProduct(prodPan)
	assert.Empty(t, mutations)
	assert.Empty(t, f.store.AllEvents())
}

// El commit encola stock.changed por línea más sale.completed, todos en la
// misma unidad atómica.
func TestCommit_EventosEncolados(t *testing.T) {
	f := buildFixture(t)

	s, err := f.uc.Commit(context.Background(), cashInput(100.00,
		sale.CartLine{ProductID: prodCafe, Quantity: 1},
		sale.CartLine{ProductID: prodPan, Quantity: 2},
	))
	require.NoError(t, err)

	assert.Len(t, f.store.EventsOfType(entity.EventStockChanged), 2)
	completed := f.store.EventsOfType(entity.EventSaleCompleted)
	require.Len(t, completed, 1)
	assert.Contains(t, string(completed[0].Payload), s.InvoiceNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Commit: numeración y concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// Ventas consecutivas del mismo día reciben números INV distintos y crecientes.
func TestCommit_NumerosDeFacturaCrecientes(t *testing.T) {
	f := buildFixture(t)

	var previous string
	for i := 0; i < 5; i++ {
		s, err := f.uc.Commit(context.Background(),
			cashInput(10.00, sale.CartLine{ProductID: prodPan, Quantity: 1}))
		require.NoError(t, err)
		assert.Greater(t, s.InvoiceNumber, previous)
		previous = s.InvoiceNumber
	}
}

// N commits simultáneos del mismo día con stock de sobra: N ventas, N números
// de factura distintos y consecutivos, sin duplicados.
func TestCommit_NumeracionConcurrenteSinDuplicados(t *testing.T) {
	f := buildFixture(t)

	const cashiers = 8
	invoices := make([]string, cashiers)
	errs := make([]error, cashiers)
	var wg sync.WaitGroup
	for i := 0; i < cashiers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := f.uc.Commit(context.Background(),
				cashInput(10.00, sale.CartLine{ProductID: prodPan, Quantity: 1}))
			if err == nil {
				invoices[i] = s.InvoiceNumber
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	distinct := make(map[string]bool, cashiers)
	for i := 0; i < cashiers; i++ {
		require.NoError(t, errs[i])
		assert.False(t, distinct[invoices[i]], "número de factura duplicado: %s", invoices[i])
		distinct[invoices[i]] = true
	}
	assert.Len(t, distinct, cashiers)
	assert.Equal(t, int64(40-cashiers), stockOf(t, f.store, prodPan))
}

// Con stock 1 y N cajeros simultáneos, exactamente una venta commitea; el resto
// recibe ErrInsufficientStock y no deja rastro.
func TestCommit_ConcurrenciaStockUnidad(t *testing.T) {
	f := buildFixture(t)
	f.store.PutProduct(&entity.Product{
		ID:           "p-ultimo",
		SKU:          "LAST-001",
		Active:       true,
		Stock:        1,
		SellingPrice: decimal.NewFromFloat(9.99),
	})

	const cashiers = 8
	errs := make([]error, cashiers)
	var wg sync.WaitGroup
	for i := 0; i < cashiers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Commit(context.Background(),
				cashInput(10.00, sale.CartLine{ProductID: "p-ultimo", Quantity: 1}))
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, cashiers-1, insufficient)
	assert.Equal(t, int64(0), stockOf(t, f.store, "p-ultimo"))

	mutations, _ := memory.NewStockMutationRepository(f.store).ListAllByProduct("p-ultimo")
	assert.Len(t, mutations, 1)
}

// Un conflicto de commit (número duplicado, lock perdido) se reintenta desde
// cero hasta lograrlo dentro del presupuesto de intentos.
func TestCommit_ReintentaAnteConflicto(t *testing.T) {
	f := buildFixture(t)

	fallos := 0
	f.txRunner.BeforeCommit = func() error {
		if fallos < 2 {
			fallos++
			return domain.ErrConflict
		}
		return nil
	}

	s, err := f.uc.Commit(context.Background(),
		cashInput(30.00, sale.CartLine{ProductID: prodCafe, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, 2, fallos)
	assert.NotEmpty(t, s.InvoiceNumber)
	assert.Equal(t, int64(9), stockOf(t, f.store, prodCafe))

	// Los intentos revertidos no dejaron asientos duplicados.
	mutations, _ := memory.NewStockMutationRepository(f.store).ListAllByProduct(prodCafe)
	assert.Len(t, mutations, 1)
}

// Agotado el presupuesto de reintentos, el conflicto se propaga.
func TestCommit_ConflictoPersistenteSePropaga(t *testing.T) {
	f := buildFixture(t)
	f.txRunner.BeforeCommit = func() error { return domain.ErrConflict }

	_, err := f.uc.Commit(context.Background(),
		cashInput(30.00, sale.CartLine{ProductID: prodCafe, Quantity: 1}))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(10), stockOf(t, f.store, prodCafe))
}
