package alert_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/application/alert"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/memory"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests Crossed (condición pura de cruce)
// ──────────────────────────────────────────────────────────────────────────────

func TestCrossed_TablaDeCasos(t *testing.T) {
	cases := []struct {
		name                   string
		oldStock, newStock, mn int64
		want                   bool
	}{
		{"cruce directo", 10, 4, 5, true},
		{"cae justo al umbral", 10, 5, 5, true},
		{"ya estaba bajo el umbral", 4, 3, 5, false},
		{"sigue por encima", 10, 7, 5, false},
		{"cae a cero: agotamiento, no stock bajo", 10, 0, 5, false},
		{"reposición no alerta", 3, 10, 5, false},
		{"umbral cero nunca alerta", 10, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, alert.Crossed(tc.oldStock, tc.newStock, tc.mn))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Monitor.Handle
// ──────────────────────────────────────────────────────────────────────────────

func stockChangedEvent(t *testing.T, id string, oldStock, newStock, minStock int64) *entity.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(entity.StockChangedPayload{
		ProductID: "p-1",
		OldStock:  oldStock,
		NewStock:  newStock,
		MinStock:  minStock,
	})
	require.NoError(t, err)
	return &entity.OutboxEvent{ID: id, Type: entity.EventStockChanged, Payload: raw, CreatedAt: time.Now()}
}

// Caída de 10 a 4 con umbral 5: una alerta stock.low, exactamente una.
func TestHandle_CruceEncolaAlerta(t *testing.T) {
	store := memory.NewStore()
	m := alert.NewMonitor(memory.NewOutboxRepository(store), logger.Nop())

	err := m.Handle(context.Background(), stockChangedEvent(t, "ev-1", 10, 4, 5))
	require.NoError(t, err)

	alerts := store.EventsOfType(entity.EventLowStockCrossed)
	require.Len(t, alerts, 1)

	var payload entity.LowStockCrossedPayload
	require.NoError(t, json.Unmarshal(alerts[0].Payload, &payload))
	assert.Equal(t, "p-1", payload.ProductID)
	assert.Equal(t, int64(4), payload.CurrentStock)
	assert.Equal(t, int64(5), payload.MinStock)
}

// Mutaciones sucesivas bajo el umbral no re-alertan; una reposición por encima
// rearma el cruce.
func TestHandle_NoRealertaBajoElUmbral(t *testing.T) {
	store := memory.NewStore()
	m := alert.NewMonitor(memory.NewOutboxRepository(store), logger.Nop())
	ctx := context.Background()

	require.NoError(t, m.Handle(ctx, stockChangedEvent(t, "ev-1", 10, 4, 5))) // cruza
	require.NoError(t, m.Handle(ctx, stockChangedEvent(t, "ev-2", 4, 3, 5)))  // sigue bajo
	require.NoError(t, m.Handle(ctx, stockChangedEvent(t, "ev-3", 3, 1, 5)))  // sigue bajo
	assert.Len(t, store.EventsOfType(entity.EventLowStockCrossed), 1)

	require.NoError(t, m.Handle(ctx, stockChangedEvent(t, "ev-4", 1, 9, 5))) // repone
	require.NoError(t, m.Handle(ctx, stockChangedEvent(t, "ev-5", 9, 2, 5))) // cruza de nuevo
	assert.Len(t, store.EventsOfType(entity.EventLowStockCrossed), 2)
}

// Caer directo a 0 es agotamiento: sin alerta de stock bajo.
func TestHandle_AgotamientoNoAlerta(t *testing.T) {
	store := memory.NewStore()
	m := alert.NewMonitor(memory.NewOutboxRepository(store), logger.Nop())

	require.NoError(t, m.Handle(context.Background(), stockChangedEvent(t, "ev-1", 10, 0, 5)))
	assert.Empty(t, store.EventsOfType(entity.EventLowStockCrossed))
}

// La entrega es at-least-once: una redelivery del mismo evento (mismo ID) no
// produce una segunda alerta.
func TestHandle_RedeliveryDeduplicada(t *testing.T) {
	store := memory.NewStore()
	m := alert.NewMonitor(memory.NewOutboxRepository(store), logger.Nop())
	ctx := context.Background()

	ev := stockChangedEvent(t, "ev-1", 10, 4, 5)
	require.NoError(t, m.Handle(ctx, ev))
	require.NoError(t, m.Handle(ctx, ev))
	require.NoError(t, m.Handle(ctx, ev))

	assert.Len(t, store.EventsOfType(entity.EventLowStockCrossed), 1)
}

// La poda de la memoria de dedup expulsa los eventos más viejos: un cruce
// reciente sigue deduplicado aunque el límite se haya superado entre la entrega
// original y la redelivery.
func TestHandle_DedupSobreviveALaPoda(t *testing.T) {
	store := memory.NewStore()
	m := alert.NewMonitor(memory.NewOutboxRepository(store), logger.Nop())
	ctx := context.Background()

	// Llena la memoria de dedup hasta el límite con eventos sin cruce.
	for i := 0; i < 10000; i++ {
		require.NoError(t, m.Handle(ctx, stockChangedEvent(t, fmt.Sprintf("relleno-%d", i), 10, 9, 5)))
	}

	cruce := stockChangedEvent(t, "ev-cruce", 10, 4, 5)
	require.NoError(t, m.Handle(ctx, cruce))
	require.Len(t, store.EventsOfType(entity.EventLowStockCrossed), 1)

	// Más eventos empujan la poda por encima del límite...
	for i := 0; i < 50; i++ {
		require.NoError(t, m.Handle(ctx, stockChangedEvent(t, fmt.Sprintf("extra-%d", i), 10, 9, 5)))
	}

	// ...pero la redelivery del cruce reciente sigue deduplicada.
	require.NoError(t, m.Handle(ctx, cruce))
	assert.Len(t, store.EventsOfType(entity.EventLowStockCrossed), 1)
}

// Un payload corrupto devuelve error (el dispatcher lo reintentará).
func TestHandle_PayloadCorrupto(t *testing.T) {
	store := memory.NewStore()
	m := alert.NewMonitor(memory.NewOutboxRepository(store), logger.Nop())

	err := m.Handle(context.Background(), &entity.OutboxEvent{
		ID:      "ev-x",
		Type:    entity.EventStockChanged,
		Payload: []byte("{no es json"),
	})
	assert.Error(t, err)
}
