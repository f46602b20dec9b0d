package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/numbering"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo implementación del generador de secuencias: lee el número más
// alto ya emitido para el prefijo y el día en la tabla del documento. Debe
// usarse dentro de la transacción que inserta el documento; el constraint único
// del número es el respaldo ante lecturas concurrentes del mismo máximo.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar la tx del documento (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// LastNumber devuelve el número más alto del día para el prefijo ("" si no hay).
// El consecutivo se ensancha a 5+ dígitos pasados 9999 documentos, así que el
// orden es por longitud y después lexicográfico: equivale al orden numérico
// sobre números cero-padded del mismo día.
func (r *SequenceRepo) LastNumber(prefix string, date time.Time) (string, error) {
	var query string
	switch prefix {
	case numbering.PrefixInvoice:
		query = `SELECT invoice_number FROM sales WHERE invoice_number LIKE $1 ORDER BY length(invoice_number) DESC, invoice_number DESC LIMIT 1`
	case numbering.PrefixAdjustment:
		query = `SELECT adjustment_number FROM adjustments WHERE adjustment_number LIKE $1 ORDER BY length(adjustment_number) DESC, adjustment_number DESC LIMIT 1`
	case numbering.PrefixPurchase:
		query = `SELECT purchase_number FROM purchases WHERE purchase_number LIKE $1 ORDER BY length(purchase_number) DESC, purchase_number DESC LIMIT 1`
	default:
		return "", fmt.Errorf("prefijo de documento %q: %w", prefix, domain.ErrInvalidInput)
	}

	var last string
	err := r.q.QueryRow(context.Background(), query, numbering.DayPattern(prefix, date)).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last document number: %w", err)
	}
	return last, nil
}
