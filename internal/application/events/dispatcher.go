package events

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// Handler procesa un evento entregado por el dispatcher. Debe ser idempotente:
// la entrega es at-least-once y el mismo evento puede llegar más de una vez
// (deduplicar por ev.ID).
type Handler func(ctx context.Context, ev *entity.OutboxEvent) error

// Config del dispatcher.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// Dispatcher entrega los eventos outbox pendientes a los handlers suscritos,
// fuera de la frontera de atomicidad del commit: un fallo de entrega nunca
// bloquea ni revierte una venta ya commiteada. Los eventos fallidos se
// reintentan en el siguiente ciclo hasta agotar MaxAttempts; después quedan
// aparcados con log de error para intervención manual.
type Dispatcher struct {
	outbox   repository.OutboxRepository
	log      *logger.Logger
	cfg      Config
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

// NewDispatcher construye el dispatcher.
func NewDispatcher(outbox repository.OutboxRepository, log *logger.Logger, cfg Config) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &Dispatcher{
		outbox:   outbox,
		log:      log.Component("outbox"),
		cfg:      cfg,
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registra un handler para un tipo de evento. Llamar antes de Start.
func (d *Dispatcher) Subscribe(eventType string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], h)
}

// Start lanza el loop de polling en una goroutine; se detiene al cancelar ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.DispatchPending(ctx)
			}
		}
	}()
}

// Wait bloquea hasta que el loop termina (tras cancelar el contexto de Start).
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// DispatchPending procesa un lote de eventos pendientes y devuelve cuántos se
// entregaron con éxito. Exportado para el loop y para disparos inmediatos
// post-commit.
func (d *Dispatcher) DispatchPending(ctx context.Context) int {
	pending, err := d.outbox.ListPending(d.cfg.BatchSize, d.cfg.MaxAttempts)
	if err != nil {
		d.log.Error().Err(err).Msg("leer eventos pendientes")
		return 0
	}
	delivered := 0
	for _, ev := range pending {
		if ctx.Err() != nil {
			return delivered
		}
		if d.deliver(ctx, ev) {
			delivered++
		}
	}
	return delivered
}

func (d *Dispatcher) deliver(ctx context.Context, ev *entity.OutboxEvent) bool {
	d.mu.RLock()
	handlers := d.handlers[ev.Type]
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			if markErr := d.outbox.MarkFailed(ev.ID); markErr != nil {
				d.log.Error().Err(markErr).Str("event_id", ev.ID).Msg("marcar evento fallido")
			}
			if ev.Attempts+1 >= d.cfg.MaxAttempts {
				d.log.Error().Err(err).
					Str("event_id", ev.ID).
					Str("type", ev.Type).
					Int("attempts", ev.Attempts+1).
					Msg("evento aparcado tras agotar reintentos")
			} else {
				d.log.Warn().Err(err).
					Str("event_id", ev.ID).
					Str("type", ev.Type).
					Int("attempts", ev.Attempts+1).
					Msg("entrega de evento fallida, se reintentará")
			}
			return false
		}
	}
	if err := d.outbox.MarkProcessed(ev.ID); err != nil {
		// El evento volverá a entregarse en el próximo ciclo; los handlers
		// idempotentes lo absorben.
		d.log.Error().Err(err).Str("event_id", ev.ID).Msg("marcar evento procesado")
		return false
	}
	return true
}
