package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, invoice_number, customer_id, cashier_id, date, total_items,
		subtotal, discount, tax, service_charge, grand_total,
		payment_method, payment_status, paid_amount, change_amount,
		cancelled_at, cancel_reason, created_at, updated_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, cancelReason *string
	err := row.Scan(
		&s.ID, &s.InvoiceNumber, &customerID, &s.CashierID, &s.Date, &s.TotalItems,
		&s.Subtotal, &s.Discount, &s.Tax, &s.ServiceCharge, &s.GrandTotal,
		&s.PaymentMethod, &s.PaymentStatus, &s.PaidAmount, &s.ChangeAmount,
		&s.CancelledAt, &cancelReason, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if customerID != nil {
		s.CustomerID = *customerID
	}
	if cancelReason != nil {
		s.CancelReason = *cancelReason
	}
	return &s, nil
}

// Create persiste la cabecera de la venta. invoice_number lleva constraint
// único: una colisión entre commits concurrentes falla la transacción completa.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, invoice_number, customer_id, cashier_id, date, total_items,
			subtotal, discount, tax, service_charge, grand_total,
			payment_method, payment_status, paid_amount, change_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	customerID := (*string)(nil)
	if sale.CustomerID != "" {
		customerID = &sale.CustomerID
	}
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.InvoiceNumber, customerID, sale.CashierID, sale.Date, sale.TotalItems,
		sale.Subtotal, sale.Discount, sale.Tax, sale.ServiceCharge, sale.GrandTotal,
		sale.PaymentMethod, sale.PaymentStatus, sale.PaidAmount, sale.ChangeAmount,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de venta.
func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, discount, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SaleID, item.ProductID, item.Quantity,
		item.UnitPrice, item.Discount, item.TotalPrice,
	)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	s, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene la venta y bloquea la cabecera (SELECT FOR UPDATE) para anulaciones.
func (r *SaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
	s, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get sale for update: %w", err)
	}
	return s, nil
}

// GetItemsBySaleID devuelve las líneas de una venta.
func (r *SaleRepo) GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, unit_price, discount, total_price
		FROM sale_items WHERE sale_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	var items []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.Discount, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpdateCancelled persiste la anulación. Solo muta los campos de cancelación.
func (r *SaleRepo) UpdateCancelled(sale *entity.Sale) error {
	query := `
		UPDATE sales
		SET payment_status = $2, cancelled_at = $3, cancel_reason = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.PaymentStatus, sale.CancelledAt, sale.CancelReason, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale cancelled: %w", err)
	}
	return nil
}
