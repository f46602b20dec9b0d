// Package alert implementa el monitor reactivo de stock bajo: observa los
// deltas de la proyección (eventos stock.changed) y levanta una alerta
// exactamente una vez por cruce del umbral mínimo. No es un poller: el barrido
// programado de reportería es un colaborador externo, no esta señal.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/tu-usuario/pos-pro/internal/application/events"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// Crossed condición de cruce: el stock estaba por encima del umbral y quedó en
// (0, umbral]. Mutaciones sucesivas que se mantienen bajo el umbral no
// re-alertan; caer a 0 es agotamiento, no stock bajo.
func Crossed(oldStock, newStock, minStock int64) bool {
	return oldStock > minStock && newStock <= minStock && newStock > 0
}

// Monitor consume stock.changed del dispatcher y encola stock.low al cruzar el
// umbral. Deduplica por ID de evento: la entrega es at-least-once y una
// redelivery no debe producir una segunda alerta.
type Monitor struct {
	outbox repository.OutboxRepository
	log    *logger.Logger
	now    func() time.Time

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string // IDs en orden de llegada, para expulsar el más viejo
}

// NewMonitor construye el monitor.
func NewMonitor(outbox repository.OutboxRepository, log *logger.Logger) *Monitor {
	return &Monitor{
		outbox: outbox,
		log:    log.Component("lowstock"),
		now:    time.Now,
		seen:   make(map[string]struct{}),
	}
}

// Handle es el handler suscrito a stock.changed.
func (m *Monitor) Handle(ctx context.Context, ev *entity.OutboxEvent) error {
	_ = ctx
	var payload entity.StockChangedPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return fmt.Errorf("payload stock.changed: %w", err)
	}

	if !m.markSeen(ev.ID) {
		return nil // redelivery de un evento ya procesado
	}

	if !Crossed(payload.OldStock, payload.NewStock, payload.MinStock) {
		return nil
	}

	alertEv, err := events.NewLowStockCrossed(payload.ProductID, payload.NewStock, payload.MinStock, m.now())
	if err != nil {
		return err
	}
	if err := m.outbox.Create(alertEv); err != nil {
		m.forget(ev.ID) // que la redelivery vuelva a intentar encolar la alerta
		return err
	}

	m.log.Warn().
		Str("product_id", payload.ProductID).
		Int64("stock", payload.NewStock).
		Int64("min_stock", payload.MinStock).
		Msg("producto cruzó el umbral de stock bajo")
	return nil
}

// seenLimit acota la memoria de deduplicación. Se expulsa el evento más viejo:
// las redeliveries llegan poco después del original, nunca miles de eventos más
// tarde.
const seenLimit = 10000

func (m *Monitor) markSeen(eventID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[eventID]; ok {
		return false
	}
	m.seen[eventID] = struct{}{}
	m.order = append(m.order, eventID)
	for len(m.seen) > seenLimit && len(m.order) > 0 {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.seen, oldest)
	}
	return true
}

func (m *Monitor) forget(eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, eventID)
}
