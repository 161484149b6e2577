package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
)

var _ repository.InvoiceItemRepository = (*InvoiceItemRepo)(nil)

// InvoiceItemRepo implementación de InvoiceItemRepository (usable con pool o tx).
type InvoiceItemRepo struct {
	q Querier
}

// NewInvoiceItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceItemRepository(q Querier) *InvoiceItemRepo {
	return &InvoiceItemRepo{q: q}
}

// ListByInvoice devuelve las líneas en orden de inserción.
func (r *InvoiceItemRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]entity.InvoiceItem, error) {
	if !validID(invoiceID) {
		return nil, nil
	}
	query := `
		SELECT id, invoice_id, COALESCE(service_id, ''), product_name, rate, quantity, created_at
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position, created_at`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, wrapErr("list invoice items", err)
	}
	defer rows.Close()

	var items []entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ServiceID, &it.ProductName, &it.Rate, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, wrapErr("scan invoice item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list invoice items", err)
	}
	return items, nil
}

// DeleteByInvoice borra todas las líneas de la factura.
func (r *InvoiceItemRepo) DeleteByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return 0, wrapErr("delete invoice items", err)
	}
	return tag.RowsAffected(), nil
}

// InsertMany inserta las líneas en un solo batch; position conserva el orden recibido.
func (r *InvoiceItemRepo) InsertMany(ctx context.Context, items []entity.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `
		INSERT INTO invoice_items (id, invoice_id, service_id, product_name, rate, quantity, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(query, it.ID, it.InvoiceID, nullIfEmpty(it.ServiceID), it.ProductName, it.Rate, it.Quantity, i, it.CreatedAt)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return wrapErr("insert invoice item", err)
		}
	}
	return nil
}
