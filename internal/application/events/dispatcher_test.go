package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/application/events"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/memory"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func buildDispatcher(store *memory.Store, maxAttempts int) *events.Dispatcher {
	return events.NewDispatcher(memory.NewOutboxRepository(store), logger.Nop(), events.Config{
		PollInterval: time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  maxAttempts,
	})
}

func enqueue(t *testing.T, store *memory.Store, id, eventType string) {
	t.Helper()
	require.NoError(t, memory.NewOutboxRepository(store).Create(&entity.OutboxEvent{
		ID:        id,
		Type:      eventType,
		Payload:   []byte(`{}`),
		CreatedAt: time.Now(),
	}))
}

func pendingIDs(store *memory.Store, maxAttempts int) []string {
	pending, _ := memory.NewOutboxRepository(store).ListPending(100, maxAttempts)
	ids := make([]string, 0, len(pending))
	for _, ev := range pending {
		ids = append(ids, ev.ID)
	}
	return ids
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests DispatchPending
// ──────────────────────────────────────────────────────────────────────────────

// Los eventos pendientes se entregan a los handlers de su tipo y quedan
// marcados como procesados.
func TestDispatchPending_EntregaYMarca(t *testing.T) {
	store := memory.NewStore()
	d := buildDispatcher(store, 3)

	var received []string
	d.Subscribe(entity.EventStockChanged, func(ctx context.Context, ev *entity.OutboxEvent) error {
		received = append(received, ev.ID)
		return nil
	})

	enqueue(t, store, "ev-1", entity.EventStockChanged)
	enqueue(t, store, "ev-2", entity.EventStockChanged)
	enqueue(t, store, "ev-3", entity.EventSaleCompleted) // sin handler: también se marca

	delivered := d.DispatchPending(context.Background())
	assert.Equal(t, 3, delivered)
	assert.Equal(t, []string{"ev-1", "ev-2"}, received)
	assert.Empty(t, pendingIDs(store, 3))
}

// Un handler que falla deja el evento pendiente con un intento más; el
// siguiente ciclo lo reentrega.
func TestDispatchPending_FalloReintenta(t *testing.T) {
	store := memory.NewStore()
	d := buildDispatcher(store, 3)

	calls := 0
	d.Subscribe(entity.EventStockChanged, func(ctx context.Context, ev *entity.OutboxEvent) error {
		calls++
		if calls == 1 {
			return errors.New("consumidor caído")
		}
		return nil
	})

	enqueue(t, store, "ev-1", entity.EventStockChanged)

	assert.Equal(t, 0, d.DispatchPending(context.Background()))
	assert.Equal(t, []string{"ev-1"}, pendingIDs(store, 3))

	assert.Equal(t, 1, d.DispatchPending(context.Background()))
	assert.Equal(t, 2, calls)
	assert.Empty(t, pendingIDs(store, 3))
}

// Agotado MaxAttempts el evento queda aparcado: deja de aparecer en los lotes.
func TestDispatchPending_AparcaTrasMaxIntentos(t *testing.T) {
	store := memory.NewStore()
	d := buildDispatcher(store, 2)

	calls := 0
	d.Subscribe(entity.EventStockChanged, func(ctx context.Context, ev *entity.OutboxEvent) error {
		calls++
		return errors.New("consumidor caído")
	})

	enqueue(t, store, "ev-1", entity.EventStockChanged)

	for i := 0; i < 5; i++ {
		d.DispatchPending(context.Background())
	}
	assert.Equal(t, 2, calls) // MaxAttempts=2: no se reentrega más
	assert.Empty(t, pendingIDs(store, 2))
}

// Varios handlers del mismo tipo: todos reciben el evento antes de marcarlo.
func TestDispatchPending_MultiplesHandlers(t *testing.T) {
	store := memory.NewStore()
	d := buildDispatcher(store, 3)

	var a, b int
	d.Subscribe(entity.EventStockChanged, func(ctx context.Context, ev *entity.OutboxEvent) error {
		a++
		return nil
	})
	d.Subscribe(entity.EventStockChanged, func(ctx context.Context, ev *entity.OutboxEvent) error {
		b++
		return nil
	})

	enqueue(t, store, "ev-1", entity.EventStockChanged)
	d.DispatchPending(context.Background())

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

// El loop de Start entrega en segundo plano y se detiene limpio al cancelar.
func TestStart_LoopEntregaYCierra(t *testing.T) {
	store := memory.NewStore()
	d := buildDispatcher(store, 3)

	done := make(chan struct{})
	d.Subscribe(entity.EventStockChanged, func(ctx context.Context, ev *entity.OutboxEvent) error {
		close(done)
		return nil
	})

	enqueue(t, store, "ev-1", entity.EventStockChanged)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el loop no entregó el evento a tiempo")
	}

	cancel()
	d.Wait()
}
