package entity

import "time"

// Tipos de mutación de stock.
const (
	MutationTypeIN         = "IN"         // entrada (compra, reposición por anulación)
	MutationTypeOUT        = "OUT"        // salida por venta
	MutationTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual (suma o resta)
	MutationTypeRETURN     = "RETURN"     // devolución de cliente
	MutationTypeDAMAGE     = "DAMAGE"     // baja por daño
	MutationTypeCORRECTION = "CORRECTION" // corrección a un valor absoluto tras conteo físico
)

// Tipos de documento que causan una mutación (variante etiquetada: tipo + id).
// Todo lector de mutaciones debe hacer switch exhaustivo sobre estos valores.
const (
	ReferenceTypeSALE       = "SALE"
	ReferenceTypePURCHASE   = "PURCHASE"
	ReferenceTypeADJUSTMENT = "ADJUSTMENT"
)

// StockMutation es una entrada del ledger de stock: inmutable una vez creada.
// Invariante: ResultingStock = PreviousStock + Quantity, y el fold en orden de
// creación de todas las mutaciones de un producto desde 0 reproduce su stock actual.
type StockMutation struct {
	ID             string
	ProductID      string
	Type           string
	Quantity       int64 // delta con signo: negativo en salidas
	PreviousStock  int64
	ResultingStock int64
	ReferenceType  string // SALE | PURCHASE | ADJUSTMENT
	ReferenceID    string
	CreatedBy      string
	CreatedAt      time.Time
}

// ValidMutationType valida un tipo de mutación.
func ValidMutationType(t string) bool {
	switch t {
	case MutationTypeIN, MutationTypeOUT, MutationTypeADJUSTMENT,
		MutationTypeRETURN, MutationTypeDAMAGE, MutationTypeCORRECTION:
		return true
	}
	return false
}

// ValidReferenceType valida un tipo de documento de referencia.
func ValidReferenceType(t string) bool {
	switch t {
	case ReferenceTypeSALE, ReferenceTypePURCHASE, ReferenceTypeADJUSTMENT:
		return true
	}
	return false
}
