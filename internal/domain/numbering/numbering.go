// Package numbering genera números de documento legibles, consecutivos por día
// y por tipo: {PREFIJO}-{YYYYMMDD}-{NNNN}. La concurrencia no se resuelve aquí:
// el repositorio de secuencias lee el máximo del día dentro de la transacción del
// documento y el constraint único sobre el número es el respaldo ante colisiones.
package numbering

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/tu-usuario/pos-pro/internal/domain"
)

// Prefijos por tipo de documento.
const (
	PrefixInvoice    = "INV"
	PrefixPurchase   = "PUR"
	PrefixAdjustment = "ADJ"
)

const dateLayout = "20060102"

var numberPattern = regexp.MustCompile(`^([A-Z]+)-(\d{8})-(\d{4,})$`)

// Format construye el número de documento: prefijo, fecha y consecutivo de 4
// dígitos con ceros a la izquierda (INV-20240131-0001). Pasados 9999 documentos
// en el día, el consecutivo se ensancha a 5+ dígitos.
func Format(prefix string, date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format(dateLayout), seq)
}

// DayPattern devuelve el patrón SQL LIKE que agrupa los documentos de un
// prefijo en un día calendario ("INV-20240131-%").
func DayPattern(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%s-%%", prefix, date.Format(dateLayout))
}

// Sequence extrae el consecutivo de un número de documento ya formateado.
func Sequence(number string) (int, error) {
	m := numberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, fmt.Errorf("número de documento %q: %w", number, domain.ErrInvalidInput)
	}
	return strconv.Atoi(m[3])
}

// Next calcula el siguiente número del día dado el último existente (vacío si el
// día no tiene documentos: arranca en 1).
func Next(prefix string, date time.Time, lastNumber string) (string, error) {
	if lastNumber == "" {
		return Format(prefix, date, 1), nil
	}
	seq, err := Sequence(lastNumber)
	if err != nil {
		return "", err
	}
	return Format(prefix, date, seq+1), nil
}
