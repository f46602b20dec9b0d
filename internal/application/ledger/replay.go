package ledger

import (
	"context"
	"fmt"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// ReplayService expone la lectura de auditoría del ledger: el fold de todas las
// mutaciones de un producto en orden de creación debe reproducir exactamente su
// stock actual. El replay solo es válido contra un snapshot tomado después de
// que los escritores concurrentes hayan commiteado.
type ReplayService struct {
	products  repository.ProductRepository
	mutations repository.StockMutationRepository
	log       *logger.Logger
}

// NewReplayService construye el servicio con repositorios atados al pool.
func NewReplayService(
	products repository.ProductRepository,
	mutations repository.StockMutationRepository,
	log *logger.Logger,
) *ReplayService {
	return &ReplayService{products: products, mutations: mutations, log: log.Component("ledger")}
}

// Replay devuelve el ledger completo de un producto en orden de creación y el
// stock reconstruido plegando los deltas desde 0.
func (s *ReplayService) Replay(ctx context.Context, productID string) ([]*entity.StockMutation, int64, error) {
	_ = ctx
	mutations, err := s.mutations.ListAllByProduct(productID)
	if err != nil {
		return nil, 0, fmt.Errorf("replay ledger: %w", err)
	}
	return mutations, Fold(mutations), nil
}

// Fold pliega las mutaciones en orden y devuelve el stock resultante desde 0.
func Fold(mutations []*entity.StockMutation) int64 {
	var stock int64
	for _, m := range mutations {
		stock += m.Quantity
	}
	return stock
}

// Reconcile compara el replay contra el stock vivo de la proyección. Un
// descuadre es una violación de invariante: indica un bug o una mutación de
// stock por fuera del ledger, y no se resuelve reintentando.
func (s *ReplayService) Reconcile(ctx context.Context, productID string) error {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	mutations, replayed, err := s.Replay(ctx, productID)
	if err != nil {
		return err
	}
	if replayed != product.Stock {
		s.log.Invariant().
			Str("product_id", productID).
			Int64("live_stock", product.Stock).
			Int64("replayed_stock", replayed).
			Int("mutations", len(mutations)).
			Msg("replay del ledger no coincide con el stock vivo")
		return fmt.Errorf("producto %s: stock vivo %d, replay %d: %w",
			productID, product.Stock, replayed, domain.ErrInvariantViolation)
	}
	// Verifica además la consistencia interna de cada asiento.
	for _, m := range mutations {
		if m.ResultingStock != m.PreviousStock+m.Quantity {
			s.log.Invariant().
				Str("product_id", productID).
				Str("mutation_id", m.ID).
				Msg("asiento inconsistente: resultante != previo + delta")
			return fmt.Errorf("mutación %s inconsistente: %w", m.ID, domain.ErrInvariantViolation)
		}
	}
	return nil
}
