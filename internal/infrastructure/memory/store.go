// Package memory implementa los puertos de repositorio sobre estructuras en
// memoria. Lo usan los tests unitarios de los coordinadores: mismo contrato que
// el adaptador postgres (incluido el rollback transaccional) sin base de datos.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/numbering"
)

// Store mantiene el estado compartido. Todas las vistas de repositorio operan
// sobre el mismo Store; el TxRunner lo snapshot-ea para simular rollback.
type Store struct {
	mu              sync.Mutex
	products        map[string]*entity.Product
	mutations       []*entity.StockMutation
	sales           map[string]*entity.Sale
	saleItems       map[string][]*entity.SaleItem
	adjustments     map[string]*entity.Adjustment
	adjustmentItems map[string][]*entity.AdjustmentItem
	outbox          []*entity.OutboxEvent
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		products:        make(map[string]*entity.Product),
		sales:           make(map[string]*entity.Sale),
		saleItems:       make(map[string][]*entity.SaleItem),
		adjustments:     make(map[string]*entity.Adjustment),
		adjustmentItems: make(map[string][]*entity.AdjustmentItem),
	}
}

// PutProduct siembra o reemplaza un producto.
func (s *Store) PutProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = cloneProduct(p)
}

// AllEvents devuelve una copia de todos los eventos outbox, en orden de inserción.
func (s *Store) AllEvents() []*entity.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.OutboxEvent, 0, len(s.outbox))
	for _, ev := range s.outbox {
		out = append(out, cloneEvent(ev))
	}
	return out
}

// EventsOfType filtra AllEvents por tipo.
func (s *Store) EventsOfType(eventType string) []*entity.OutboxEvent {
	var out []*entity.OutboxEvent
	for _, ev := range s.AllEvents() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Snapshot / restore (soporte de rollback del TxRunner)
// ──────────────────────────────────────────────────────────────────────────────

type snapshot struct {
	products        map[string]*entity.Product
	mutations       []*entity.StockMutation
	sales           map[string]*entity.Sale
	saleItems       map[string][]*entity.SaleItem
	adjustments     map[string]*entity.Adjustment
	adjustmentItems map[string][]*entity.AdjustmentItem
	outbox          []*entity.OutboxEvent
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		products:        make(map[string]*entity.Product, len(s.products)),
		sales:           make(map[string]*entity.Sale, len(s.sales)),
		saleItems:       make(map[string][]*entity.SaleItem, len(s.saleItems)),
		adjustments:     make(map[string]*entity.Adjustment, len(s.adjustments)),
		adjustmentItems: make(map[string][]*entity.AdjustmentItem, len(s.adjustmentItems)),
	}
	for id, p := range s.products {
		snap.products[id] = cloneProduct(p)
	}
	for id, v := range s.sales {
		snap.sales[id] = cloneSale(v)
	}
	for id, items := range s.saleItems {
		snap.saleItems[id] = append([]*entity.SaleItem(nil), items...)
	}
	for id, a := range s.adjustments {
		snap.adjustments[id] = cloneAdjustment(a)
	}
	for id, items := range s.adjustmentItems {
		snap.adjustmentItems[id] = append([]*entity.AdjustmentItem(nil), items...)
	}
	snap.mutations = append([]*entity.StockMutation(nil), s.mutations...)
	for _, ev := range s.outbox {
		snap.outbox = append(snap.outbox, cloneEvent(ev))
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.mutations = snap.mutations
	s.sales = snap.sales
	s.saleItems = snap.saleItems
	s.adjustments = snap.adjustments
	s.adjustmentItems = snap.adjustmentItems
	s.outbox = snap.outbox
}

// ──────────────────────────────────────────────────────────────────────────────
// Clones (los repositorios nunca exponen punteros al estado interno)
// ──────────────────────────────────────────────────────────────────────────────

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func cloneSale(v *entity.Sale) *entity.Sale {
	cp := *v
	if v.CancelledAt != nil {
		t := *v.CancelledAt
		cp.CancelledAt = &t
	}
	return &cp
}

func cloneAdjustment(a *entity.Adjustment) *entity.Adjustment {
	cp := *a
	return &cp
}

func cloneMutation(m *entity.StockMutation) *entity.StockMutation {
	cp := *m
	return &cp
}

func cloneEvent(ev *entity.OutboxEvent) *entity.OutboxEvent {
	cp := *ev
	if ev.ProcessedAt != nil {
		t := *ev.ProcessedAt
		cp.ProcessedAt = &t
	}
	cp.Payload = append([]byte(nil), ev.Payload...)
	return &cp
}

// ──────────────────────────────────────────────────────────────────────────────
// ProductRepository
// ──────────────────────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository sobre el Store.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el repositorio de productos.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

// GetForUpdate no bloquea filas: el TxRunner en memoria serializa transacciones
// completas, que es una garantía más fuerte que el lock por fila.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *ProductRepo) UpdateStock(productID string, stock int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// StockMutationRepository
// ──────────────────────────────────────────────────────────────────────────────

// StockMutationRepo implementa repository.StockMutationRepository sobre el Store.
type StockMutationRepo struct{ s *Store }

// NewStockMutationRepository construye el repositorio del ledger.
func NewStockMutationRepository(s *Store) *StockMutationRepo { return &StockMutationRepo{s: s} }

func (r *StockMutationRepo) Create(m *entity.StockMutation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.mutations = append(r.s.mutations, cloneMutation(m))
	return nil
}

func (r *StockMutationRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMutation, error) {
	all, err := r.ListAllByProduct(productID)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *StockMutationRepo) ListAllByProduct(productID string) ([]*entity.StockMutation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMutation
	for _, m := range r.s.mutations {
		if m.ProductID == productID {
			out = append(out, cloneMutation(m))
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// SaleRepository
// ──────────────────────────────────────────────────────────────────────────────

// SaleRepo implementa repository.SaleRepository sobre el Store.
type SaleRepo struct{ s *Store }

// NewSaleRepository construye el repositorio de ventas.
func NewSaleRepository(s *Store) *SaleRepo { return &SaleRepo{s: s} }

// Create falla con ErrConflict si el número de factura ya existe, igual que el
// constraint único de la tabla mapeado por el adaptador postgres.
func (r *SaleRepo) Create(v *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.sales {
		if existing.InvoiceNumber == v.InvoiceNumber {
			return domain.ErrConflict
		}
	}
	r.s.sales[v.ID] = cloneSale(v)
	return nil
}

func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *item
	r.s.saleItems[item.SaleID] = append(r.s.saleItems[item.SaleID], &cp)
	return nil
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return cloneSale(v), nil
}

func (r *SaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

func (r *SaleRepo) GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.saleItems[saleID]
	out := make([]*entity.SaleItem, 0, len(items))
	for _, it := range items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *SaleRepo) UpdateCancelled(v *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.sales[v.ID]
	if !ok {
		return domain.ErrSaleNotFound
	}
	existing.PaymentStatus = v.PaymentStatus
	existing.CancelReason = v.CancelReason
	if v.CancelledAt != nil {
		t := *v.CancelledAt
		existing.CancelledAt = &t
	}
	existing.UpdatedAt = time.Now()
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustmentRepository
// ──────────────────────────────────────────────────────────────────────────────

// AdjustmentRepo implementa repository.AdjustmentRepository sobre el Store.
type AdjustmentRepo struct{ s *Store }

// NewAdjustmentRepository construye el repositorio de ajustes.
func NewAdjustmentRepository(s *Store) *AdjustmentRepo { return &AdjustmentRepo{s: s} }

func (r *AdjustmentRepo) Create(a *entity.Adjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.adjustments {
		if existing.AdjustmentNumber == a.AdjustmentNumber {
			return domain.ErrConflict
		}
	}
	r.s.adjustments[a.ID] = cloneAdjustment(a)
	return nil
}

func (r *AdjustmentRepo) CreateItem(item *entity.AdjustmentItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *item
	r.s.adjustmentItems[item.AdjustmentID] = append(r.s.adjustmentItems[item.AdjustmentID], &cp)
	return nil
}

func (r *AdjustmentRepo) GetByID(id string) (*entity.Adjustment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.adjustments[id]
	if !ok {
		return nil, nil
	}
	return cloneAdjustment(a), nil
}

func (r *AdjustmentRepo) GetItemsByAdjustmentID(adjustmentID string) ([]*entity.AdjustmentItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.adjustmentItems[adjustmentID]
	out := make([]*entity.AdjustmentItem, 0, len(items))
	for _, it := range items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// SequenceRepository
// ──────────────────────────────────────────────────────────────────────────────

// SequenceRepo implementa repository.SequenceRepository sobre el Store.
type SequenceRepo struct{ s *Store }

// NewSequenceRepository construye el generador de secuencias en memoria.
func NewSequenceRepository(s *Store) *SequenceRepo { return &SequenceRepo{s: s} }

// LastNumber replica la semántica del adaptador postgres: máximo número emitido
// del prefijo en el día calendario dado, "" si no hay documentos. La comparación
// es por consecutivo extraído: pasados 9999 documentos el sufijo tiene 5+
// dígitos y el orden lexicográfico dejaría de ser el numérico.
func (r *SequenceRepo) LastNumber(prefix string, date time.Time) (string, error) {
	dayPrefix := strings.TrimSuffix(numbering.DayPattern(prefix, date), "%")

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var last string
	var lastSeq int
	consider := func(number string) {
		if !strings.HasPrefix(number, dayPrefix) {
			return
		}
		seq, err := numbering.Sequence(number)
		if err != nil {
			return
		}
		if seq > lastSeq {
			last = number
			lastSeq = seq
		}
	}
	switch prefix {
	case numbering.PrefixInvoice:
		for _, v := range r.s.sales {
			consider(v.InvoiceNumber)
		}
	case numbering.PrefixAdjustment:
		for _, a := range r.s.adjustments {
			consider(a.AdjustmentNumber)
		}
	case numbering.PrefixPurchase:
		// sin compras en memoria
	default:
		return "", domain.ErrInvalidInput
	}
	return last, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// OutboxRepository
// ──────────────────────────────────────────────────────────────────────────────

// OutboxRepo implementa repository.OutboxRepository sobre el Store.
type OutboxRepo struct{ s *Store }

// NewOutboxRepository construye el repositorio outbox.
func NewOutboxRepository(s *Store) *OutboxRepo { return &OutboxRepo{s: s} }

func (r *OutboxRepo) Create(ev *entity.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox = append(r.s.outbox, cloneEvent(ev))
	return nil
}

func (r *OutboxRepo) ListPending(limit, maxAttempts int) ([]*entity.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OutboxEvent
	for _, ev := range r.s.outbox {
		if ev.ProcessedAt == nil && ev.Attempts < maxAttempts {
			out = append(out, cloneEvent(ev))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *OutboxRepo) MarkProcessed(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ev := range r.s.outbox {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *OutboxRepo) MarkFailed(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ev := range r.s.outbox {
		if ev.ID == id {
			ev.Attempts++
			return nil
		}
	}
	return domain.ErrNotFound
}
