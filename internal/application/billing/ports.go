package billing

import (
	"context"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
)

// InvoiceTxRunner ejecuta una función dentro de una transacción con los repos de facturación.
// Si fn retorna error se hace rollback y nada de lo escrito queda visible.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		itemRepo repository.InvoiceItemRepository,
	) error) error
}

// InvoicePDFGenerator genera la representación gráfica de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// InvoiceDocument datos necesarios para renderizar el PDF.
type InvoiceDocument struct {
	CompanyName string
	Invoice     *entity.Invoice
	Items       []entity.InvoiceItem
}

// Resultados de una reconciliación de líneas, usados como etiqueta de métricas.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// ReconciliationObserver recibe el resultado de cada reconciliación (métricas).
type ReconciliationObserver interface {
	ObserveReconciliation(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveReconciliation(string) {}
