package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/storetimeout"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/access"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/invoice"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReconcileItems reemplaza el conjunto completo de líneas de la factura por el recibido
// y recalcula sus totales. Todo ocurre en una transacción con la fila de la factura
// bloqueada: o se aplican borrado, inserción y nuevos totales, o no cambia nada.
// Repetir la misma petición deja la factura en el mismo estado. Una factura pagada
// no admite cambios y un empleado solo modifica sus propias facturas.
func (uc *InvoiceUseCase) ReconcileItems(ctx context.Context, session *entity.Session, invoiceID string, in dto.UpdateInvoiceItemsRequest) (resp *dto.InvoiceDetailResponse, err error) {
	defer func() {
		switch {
		case err == nil:
			uc.observer.ObserveReconciliation(OutcomeSuccess)
		case errors.Is(err, domain.ErrReconciliationFailed), errors.Is(err, domain.ErrTransient):
			uc.observer.ObserveReconciliation(OutcomeFailed)
		default:
			uc.observer.ObserveReconciliation(OutcomeRejected)
		}
	}()

	session, err = access.Check(session, entity.RoleAdmin, entity.RoleEmployee)
	if err != nil {
		return nil, err
	}
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return nil, fmt.Errorf("%w: id de factura vacío", domain.ErrInvalidInput)
	}
	desired, err := validateDesiredItems(in.Items)
	if err != nil {
		return nil, err
	}
	if in.TaxRate != nil {
		if err := invoice.ValidateTaxRate(*in.TaxRate); err != nil {
			return nil, err
		}
	}
	if in.GrandTotal != nil && in.GrandTotal.IsNegative() {
		return nil, fmt.Errorf("%w: total_amount no puede ser negativo", domain.ErrInvalidInput)
	}

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	now := uc.now()
	var (
		inv   *entity.Invoice
		items []entity.InvoiceItem
	)
	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, itemRepo repository.InvoiceItemRepository) error {
		current, err := invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: factura %s", domain.ErrNotFound, invoiceID)
		}
		if err := access.CheckOwner(session, current.EmployeeEmail); err != nil {
			return err
		}
		if current.IsPaid() {
			return fmt.Errorf("%w: la factura %s ya está pagada y sus líneas no se modifican", domain.ErrInvalidState, current.Number)
		}
		if in.Version != nil && *in.Version != current.Version {
			return fmt.Errorf("%w: la factura cambió (versión %d, recibida %d)", domain.ErrConflict, current.Version, *in.Version)
		}

		// El id de la ruta manda sobre cualquier invoice_id enviado en las líneas.
		items = make([]entity.InvoiceItem, len(desired))
		for i, d := range desired {
			d.ID = uuid.New().String()
			d.InvoiceID = current.ID
			d.CreatedAt = now
			items[i] = d
		}

		totals, err := resolveTotals(items, current.TaxRate, in)
		if err != nil {
			return err
		}

		if _, err := itemRepo.DeleteByInvoice(ctx, current.ID); err != nil {
			return fmt.Errorf("%w: borrar líneas: %w", domain.ErrReconciliationFailed, err)
		}
		if err := itemRepo.InsertMany(ctx, items); err != nil {
			return fmt.Errorf("%w: insertar líneas: %w", domain.ErrReconciliationFailed, err)
		}

		next := *current
		next.Subtotal = totals.Subtotal
		next.TaxRate = totals.TaxRate
		next.TaxAmount = totals.TaxAmount
		next.GrandTotal = totals.GrandTotal
		next.Version = current.Version + 1
		next.UpdatedAt = now
		if err := invoiceRepo.UpdateTotals(ctx, &next); err != nil {
			return fmt.Errorf("%w: actualizar totales: %w", domain.ErrReconciliationFailed, err)
		}
		inv = &next
		return nil
	})
	if err != nil {
		err = reconciliationError(ctx, err)
		ev := uc.log.Warn()
		if errors.Is(err, domain.ErrReconciliationFailed) {
			ev = uc.log.Error()
		}
		ev.Err(err).
			Str("invoice_id", invoiceID).
			Str("user_id", session.UserID).
			Msg("reconciliación de líneas rechazada")
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Int64("version", inv.Version).
		Int("items", len(items)).
		Str("total", inv.GrandTotal.StringFixed(moneyPlaces)).
		Msg("líneas de factura reconciliadas")
	return toDetailResponse(inv, items), nil
}

// validateDesiredItems valida las líneas deseadas. No se completan valores por defecto:
// una cantidad menor que 1 es un error de entrada.
func validateDesiredItems(in []dto.InvoiceItemRequest) ([]entity.InvoiceItem, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: items es obligatorio", domain.ErrInvalidInput)
	}
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la factura debe conservar al menos una línea", domain.ErrInvalidInput)
	}
	out := make([]entity.InvoiceItem, 0, len(in))
	for i, it := range in {
		name := strings.TrimSpace(it.ProductName)
		if name == "" {
			return nil, fmt.Errorf("%w: items[%d].product_name es obligatorio", domain.ErrInvalidInput, i)
		}
		if it.Rate == nil || it.Rate.IsNegative() {
			return nil, fmt.Errorf("%w: items[%d].rate debe ser >= 0", domain.ErrInvalidInput, i)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: items[%d].quantity debe ser >= 1", domain.ErrInvalidInput, i)
		}
		out = append(out, entity.InvoiceItem{
			ServiceID:   strings.TrimSpace(it.ServiceID),
			ProductName: name,
			Rate:        *it.Rate,
			Quantity:    it.Quantity,
		})
	}
	return out, nil
}

// resolveTotals elige cómo calcular los totales: total explícito (deriva la tasa),
// tasa explícita o la tasa vigente de la factura. Si llegan ambos deben coincidir.
func resolveTotals(items []entity.InvoiceItem, currentRate decimal.Decimal, in dto.UpdateInvoiceItemsRequest) (invoice.Totals, error) {
	switch {
	case in.GrandTotal != nil && in.TaxRate != nil:
		totals, err := invoice.ComputeTotals(items, *in.TaxRate)
		if err != nil {
			return invoice.Totals{}, err
		}
		if !invoice.SameAmount(totals.GrandTotal, *in.GrandTotal) {
			return invoice.Totals{}, fmt.Errorf("%w: total_amount %s no corresponde a tax_rate %s (esperado %s)",
				domain.ErrInvalidInput, in.GrandTotal, in.TaxRate, totals.GrandTotal.StringFixed(moneyPlaces))
		}
		return totals, nil
	case in.GrandTotal != nil:
		return invoice.TotalsFromGrandTotal(items, *in.GrandTotal)
	case in.TaxRate != nil:
		return invoice.ComputeTotals(items, *in.TaxRate)
	default:
		return invoice.ComputeTotals(items, currentRate)
	}
}

// reconciliationError clasifica el error de la transacción. Los errores de validación y
// de estado se devuelven tal cual; cualquier otro fallo de almacenamiento (incluido el
// commit) es un ErrReconciliationFailed y, si fue por plazo vencido, además ErrTransient.
func reconciliationError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrConflict):
		return err
	case !errors.Is(err, domain.ErrReconciliationFailed):
		err = fmt.Errorf("%w: %w", domain.ErrReconciliationFailed, err)
	}
	return storetimeout.Error(ctx, err)
}
