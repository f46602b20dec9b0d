package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Taxonomía: validación (entrada inválida, se reporta antes de escribir nada),
// conflicto (la unidad atómica completa hace rollback y el caller puede reintentar
// la operación desde cero) y violación de invariante (condición fatal que no se
// resuelve reintentando; se loggea distinto de un conflicto ordinario).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrProductInactive     = errors.New("producto inactivo")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInsufficientPayment = errors.New("pago insuficiente")
	ErrInvalidAdjustment   = errors.New("ajuste inválido")
	ErrSaleNotFound        = errors.New("venta no encontrada")
	ErrAlreadyCancelled    = errors.New("la venta ya está anulada")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvariantViolation  = errors.New("violación de invariante del ledger")
)

// IsRetriable indica si el error es un conflicto transitorio (documento duplicado,
// lock timeout, fallo de serialización) que justifica reintentar la operación completa.
// Los errores de validación y de stock nunca son retriables: reflejan estado real.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrConflict)
}
