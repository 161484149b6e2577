package billing

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/storetimeout"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/access"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
)

const maxPaymentMethodLen = 50

// PayInvoice registra el pago de la factura (Pending -> Paid) con el método indicado.
// Pagar una factura ya pagada devuelve ErrInvalidState y no modifica el método registrado.
// Un empleado solo paga sus propias facturas.
func (uc *InvoiceUseCase) PayInvoice(ctx context.Context, session *entity.Session, invoiceID string, in dto.PayInvoiceRequest) (*dto.InvoiceResponse, error) {
	session, err := access.Check(session, entity.RoleAdmin, entity.RoleEmployee)
	if err != nil {
		return nil, err
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" || strings.EqualFold(method, entity.PaymentMethodNone) {
		return nil, fmt.Errorf("%w: payment_method es obligatorio", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(method) > maxPaymentMethodLen {
		return nil, fmt.Errorf("%w: payment_method admite hasta %d caracteres", domain.ErrInvalidInput, maxPaymentMethodLen)
	}

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	var paid *entity.Invoice
	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, _ repository.InvoiceItemRepository) error {
		inv, err := invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return fmt.Errorf("%w: factura %s", domain.ErrNotFound, invoiceID)
		}
		if err := access.CheckOwner(session, inv.EmployeeEmail); err != nil {
			return err
		}
		if inv.IsPaid() {
			return fmt.Errorf("%w: la factura %s ya está pagada (%s)", domain.ErrInvalidState, inv.Number, inv.PaymentMethod)
		}
		inv.PaymentStatus = entity.PaymentStatusPaid
		inv.PaymentMethod = method
		inv.UpdatedAt = uc.now()
		if err := invoiceRepo.UpdateStatus(ctx, inv); err != nil {
			return err
		}
		paid = inv
		return nil
	})
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}

	uc.log.Info().
		Str("invoice_id", paid.ID).
		Str("method", method).
		Str("user_id", session.UserID).
		Msg("factura pagada")
	resp := toInvoiceResponse(paid)
	return &resp, nil
}
