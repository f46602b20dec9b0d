package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/numbering"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/memory"
)

var testDate = time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

func seedSale(t *testing.T, store *memory.Store, id, invoiceNumber string) {
	t.Helper()
	require.NoError(t, memory.NewSaleRepository(store).Create(&entity.Sale{
		ID:            id,
		InvoiceNumber: invoiceNumber,
		CashierID:     "u-1",
		Date:          testDate,
	}))
}

func TestLastNumber_SinDocumentosDevuelveVacio(t *testing.T) {
	store := memory.NewStore()
	last, err := memory.NewSequenceRepository(store).LastNumber(numbering.PrefixInvoice, testDate)
	require.NoError(t, err)
	assert.Equal(t, "", last)
}

func TestLastNumber_MaximoDelDiaPorPrefijo(t *testing.T) {
	store := memory.NewStore()
	seedSale(t, store, "s-1", "INV-20240131-0001")
	seedSale(t, store, "s-2", "INV-20240131-0007")
	seedSale(t, store, "s-3", "INV-20240130-0099") // otro día: fuera

	last, err := memory.NewSequenceRepository(store).LastNumber(numbering.PrefixInvoice, testDate)
	require.NoError(t, err)
	assert.Equal(t, "INV-20240131-0007", last)
}

// El máximo es por consecutivo, no lexicográfico: con el sufijo ensanchado a 5
// dígitos, 10000 gana a 9999 aunque "-9999" ordene después como string.
func TestLastNumber_ConsecutivoEnsanchado(t *testing.T) {
	store := memory.NewStore()
	seedSale(t, store, "s-1", "INV-20240131-9999")
	seedSale(t, store, "s-2", "INV-20240131-10000")

	last, err := memory.NewSequenceRepository(store).LastNumber(numbering.PrefixInvoice, testDate)
	require.NoError(t, err)
	assert.Equal(t, "INV-20240131-10000", last)

	next, err := numbering.Next(numbering.PrefixInvoice, testDate, last)
	require.NoError(t, err)
	assert.Equal(t, "INV-20240131-10001", next)
}
