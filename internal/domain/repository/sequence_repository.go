package repository

import "time"

// SequenceRepository define el puerto del generador de secuencias documentales.
// LastNumber debe ejecutarse dentro de la misma transacción que inserta el
// documento; el constraint único sobre el número convierte una colisión entre
// commits concurrentes en un conflicto retriable en vez de un duplicado.
type SequenceRepository interface {
	// LastNumber devuelve el número más alto ya emitido para el prefijo y el día
	// calendario dados ("" si el día no tiene documentos de ese tipo).
	LastNumber(prefix string, date time.Time) (string, error)
}
