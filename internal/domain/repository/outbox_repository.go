package repository

import "github.com/tu-usuario/pos-pro/internal/domain/entity"

// OutboxRepository define el puerto de la cola de eventos salientes. Create se
// invoca dentro de la transacción del commit financiero; el resto lo usa el
// dispatcher post-commit.
type OutboxRepository interface {
	Create(event *entity.OutboxEvent) error
	// ListPending devuelve eventos no procesados con menos de maxAttempts
	// intentos, en orden de creación.
	ListPending(limit, maxAttempts int) ([]*entity.OutboxEvent, error)
	MarkProcessed(id string) error
	// MarkFailed incrementa el contador de intentos; el evento sigue pendiente
	// hasta agotar maxAttempts.
	MarkFailed(id string) error
}
