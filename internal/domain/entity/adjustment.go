package entity

import "time"

// Tipos de ajuste manual de stock.
const (
	AdjustmentTypeADDITION    = "ADDITION"    // suma la cantidad indicada
	AdjustmentTypeSUBTRACTION = "SUBTRACTION" // resta la cantidad indicada
	AdjustmentTypeCORRECTION  = "CORRECTION"  // la cantidad es el nuevo stock absoluto
)

// Adjustment representa la cabecera de un ajuste de stock (corrección manual).
type Adjustment struct {
	ID               string
	AdjustmentNumber string // único: ADJ-YYYYMMDD-NNNN
	Date             time.Time
	Type             string
	Reason           string
	CreatedBy        string
	CreatedAt        time.Time
}

// AdjustmentItem es una línea de ajuste. En CORRECTION, Quantity es el valor
// absoluto objetivo del stock; en los demás tipos es la cantidad a sumar/restar.
type AdjustmentItem struct {
	ID           string
	AdjustmentID string
	ProductID    string
	Quantity     int64
	Note         string
}

// ValidAdjustmentType valida un tipo de ajuste.
func ValidAdjustmentType(t string) bool {
	switch t {
	case AdjustmentTypeADDITION, AdjustmentTypeSUBTRACTION, AdjustmentTypeCORRECTION:
		return true
	}
	return false
}
