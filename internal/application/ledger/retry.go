package ledger

import (
	"context"
	"math/rand"
	"time"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// RetryPolicy reintentos ante conflictos transitorios (número duplicado, lock
// timeout). Cada reintento repite la operación completa releyendo stock fresco;
// nunca se reanuda a mitad. La comparten todos los coordinadores de commit.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// WithDefaults completa los campos en cero con los valores por defecto.
func (p RetryPolicy) WithDefaults() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Backoff <= 0 {
		p.Backoff = 50 * time.Millisecond
	}
	return p
}

// WithRetry ejecuta la operación completa con reintentos acotados y backoff con
// jitter solo ante errores retriables (ErrConflict). Los errores de validación
// y de stock se propagan de inmediato: reflejan estado real, no una carrera.
func WithRetry(ctx context.Context, log *logger.Logger, policy RetryPolicy, op func() error) error {
	var err error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		err = op()
		if err == nil || !domain.IsRetriable(err) {
			return err
		}
		if attempt == policy.Attempts {
			break
		}
		backoff := policy.Backoff * time.Duration(attempt)
		backoff += time.Duration(rand.Int63n(int64(policy.Backoff)))
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).
			Msg("conflicto en commit, reintentando desde cero")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
