package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tu-usuario/pos-pro/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isConcurrencyFailure verifica fallos transitorios de concurrencia:
// 40001 serialization_failure, 40P01 deadlock_detected, 55P03 lock_not_available.
func isConcurrencyFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// mapConflict traduce violaciones de unicidad y fallos de concurrencia a
// domain.ErrConflict (retriable); los demás errores pasan sin cambio.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) || isConcurrencyFailure(err) {
		return domain.ErrConflict
	}
	return err
}
