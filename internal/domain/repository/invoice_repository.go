package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
)

// InvoiceFilter criterios para listar facturas. Campos vacíos no filtran.
type InvoiceFilter struct {
	From          time.Time // inclusive
	To            time.Time // exclusivo
	PaymentStatus string
	EmployeeEmail string
	Limit         int
	Offset        int
}

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetForUpdate obtiene la factura y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	// UpdateTotals escribe subtotal, impuesto, total y la nueva versión.
	UpdateTotals(ctx context.Context, invoice *entity.Invoice) error
	// UpdateStatus escribe estado y método de pago.
	UpdateStatus(ctx context.Context, invoice *entity.Invoice) error
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
}

// InvoiceItemRepository define el puerto de persistencia para las líneas de factura.
type InvoiceItemRepository interface {
	ListByInvoice(ctx context.Context, invoiceID string) ([]entity.InvoiceItem, error)
	// DeleteByInvoice borra todas las líneas y devuelve cuántas eliminó.
	DeleteByInvoice(ctx context.Context, invoiceID string) (int64, error)
	InsertMany(ctx context.Context, items []entity.InvoiceItem) error
}
