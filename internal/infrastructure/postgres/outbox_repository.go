package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo implementación de la cola de eventos salientes sobre PostgreSQL
// (usable con pool o tx). Create corre dentro de la transacción del commit
// financiero; el dispatcher usa el resto con el pool.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Create encola un evento.
func (r *OutboxRepo) Create(event *entity.OutboxEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	query := `
		INSERT INTO outbox_events (id, type, payload, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		event.ID, event.Type, event.Payload, event.Attempts, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create outbox event: %w", err)
	}
	return nil
}

// ListPending devuelve eventos no procesados con menos de maxAttempts intentos,
// en orden de creación. FOR UPDATE SKIP LOCKED permite correr más de un
// dispatcher sin entregarse los mismos eventos dentro del mismo instante.
func (r *OutboxRepo) ListPending(limit, maxAttempts int) ([]*entity.OutboxEvent, error) {
	query := `
		SELECT id, type, payload, attempts, created_at, processed_at
		FROM outbox_events
		WHERE processed_at IS NULL AND attempts < $2
		ORDER BY created_at ASC, id ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(context.Background(), query, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	defer rows.Close()
	var list []*entity.OutboxEvent
	for rows.Next() {
		var ev entity.OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Payload, &ev.Attempts, &ev.CreatedAt, &ev.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}

// MarkProcessed marca el evento como entregado.
func (r *OutboxRepo) MarkProcessed(id string) error {
	query := `UPDATE outbox_events SET processed_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

// MarkFailed incrementa el contador de intentos; el evento sigue pendiente.
func (r *OutboxRepo) MarkFailed(id string) error {
	query := `UPDATE outbox_events SET attempts = attempts + 1 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("mark event failed: %w", err)
	}
	return nil
}
