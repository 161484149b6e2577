package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/storetimeout"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/access"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	itemRepo    repository.InvoiceItemRepository
	generator   InvoicePDFGenerator
	companyName string
	store       storetimeout.Limit
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.InvoiceItemRepository,
	generator InvoicePDFGenerator,
	companyName string,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		generator:   generator,
		companyName: companyName,
	}
}

// WithStoreTimeout acota la lectura de la factura y sus líneas.
func (uc *PDFUseCase) WithStoreTimeout(d time.Duration) *PDFUseCase {
	uc.store = storetimeout.Limit(d)
	return uc
}

// DownloadInvoicePDF recupera la factura con sus líneas y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si la factura no existe.
//   - domain.ErrForbidden       si un empleado pide la factura de otro.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, session *entity.Session, invoiceID string) (pdfBytes []byte, filename string, err error) {
	session, err = access.Check(session)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", storetimeout.Error(ctx, fmt.Errorf("pdf: obtener factura: %w", err))
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if err := access.CheckOwner(session, inv.EmployeeEmail); err != nil {
		return nil, "", err
	}

	items, err := uc.itemRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, "", storetimeout.Error(ctx, fmt.Errorf("pdf: obtener líneas: %w", err))
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, InvoiceDocument{
		CompanyName: uc.companyName,
		Invoice:     inv,
		Items:       items,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	return pdfBytes, fmt.Sprintf("invoice_%s.pdf", inv.Number), nil
}
