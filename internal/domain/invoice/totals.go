// Package invoice contiene el cálculo de totales de una factura (servicio de dominio puro).
// Los montos se calculan con precisión completa; el redondeo a centavos ocurre solo al
// presentar (DTO, PDF) para no acumular error entre ediciones.
package invoice

import (
	"fmt"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// centTolerance es la diferencia máxima aceptada al comparar montos presentados con 2 decimales.
	centTolerance = decimal.New(5, -3)
)

// Totals agrupa los importes derivados de las líneas de una factura.
type Totals struct {
	Subtotal   decimal.Decimal
	TaxRate    decimal.Decimal
	TaxAmount  decimal.Decimal
	GrandTotal decimal.Decimal
}

// ComputeSubtotal suma rate * quantity de todas las líneas.
func ComputeSubtotal(items []entity.InvoiceItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// ComputeTax devuelve subtotal * taxRatePercent / 100. La tasa debe estar en [0, 100].
func ComputeTax(subtotal, taxRatePercent decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateTaxRate(taxRatePercent); err != nil {
		return decimal.Zero, err
	}
	return subtotal.Mul(taxRatePercent).Div(hundred), nil
}

// ComputeGrandTotal devuelve subtotal + tax.
func ComputeGrandTotal(subtotal, tax decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax)
}

// ValidateTaxRate rechaza tasas fuera de [0, 100].
func ValidateTaxRate(taxRatePercent decimal.Decimal) error {
	if taxRatePercent.IsNegative() || taxRatePercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: tax_rate %s fuera de [0, 100]", domain.ErrInvalidInput, taxRatePercent)
	}
	return nil
}

// ComputeTotals calcula subtotal, impuesto y total a partir de las líneas y una tasa.
func ComputeTotals(items []entity.InvoiceItem, taxRatePercent decimal.Decimal) (Totals, error) {
	subtotal := ComputeSubtotal(items)
	tax, err := ComputeTax(subtotal, taxRatePercent)
	if err != nil {
		return Totals{}, err
	}
	return Totals{
		Subtotal:   subtotal,
		TaxRate:    taxRatePercent,
		TaxAmount:  tax,
		GrandTotal: ComputeGrandTotal(subtotal, tax),
	}, nil
}

// TotalsFromGrandTotal deriva la tasa de impuesto cuando el cliente envía el total explícito.
// El total no puede ser menor que el subtotal ni implicar una tasa mayor a 100%.
// Con subtotal cero solo se acepta total cero.
func TotalsFromGrandTotal(items []entity.InvoiceItem, grandTotal decimal.Decimal) (Totals, error) {
	subtotal := ComputeSubtotal(items)
	tax := grandTotal.Sub(subtotal)
	if tax.LessThan(centTolerance.Neg()) {
		return Totals{}, fmt.Errorf("%w: grand_total %s menor que el subtotal %s", domain.ErrInvalidInput, grandTotal, subtotal)
	}
	if tax.IsNegative() {
		tax = decimal.Zero
	}
	if subtotal.IsZero() {
		if !tax.IsZero() {
			return Totals{}, fmt.Errorf("%w: grand_total %s sin líneas que lo respalden", domain.ErrInvalidInput, grandTotal)
		}
		return Totals{Subtotal: subtotal, TaxRate: decimal.Zero, TaxAmount: tax, GrandTotal: subtotal}, nil
	}
	rate := tax.Mul(hundred).Div(subtotal)
	if err := ValidateTaxRate(rate); err != nil {
		return Totals{}, err
	}
	return Totals{
		Subtotal:   subtotal,
		TaxRate:    rate,
		TaxAmount:  tax,
		GrandTotal: ComputeGrandTotal(subtotal, tax),
	}, nil
}

// SameAmount compara dos montos a nivel de centavo.
func SameAmount(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(centTolerance)
}

// NormalizeQuantity aplica la regla de cantidad mínima: toda cantidad menor que 1 pasa a 1.
func NormalizeQuantity(q int64) int64 {
	if q < 1 {
		return 1
	}
	return q
}

// ApplyQuantityChange reemplaza la cantidad de la línea index y devuelve una copia de las
// líneas con el subtotal agregado recalculado. No modifica el slice recibido.
func ApplyQuantityChange(items []entity.InvoiceItem, index int, newQuantity int64) ([]entity.InvoiceItem, decimal.Decimal, error) {
	if index < 0 || index >= len(items) {
		return nil, decimal.Zero, fmt.Errorf("%w: línea %d no existe", domain.ErrInvalidInput, index)
	}
	out := make([]entity.InvoiceItem, len(items))
	copy(out, items)
	out[index].Quantity = NormalizeQuantity(newQuantity)
	return out, ComputeSubtotal(out), nil
}

// RemoveItem devuelve una copia de las líneas sin la posición index y el nuevo subtotal.
func RemoveItem(items []entity.InvoiceItem, index int) ([]entity.InvoiceItem, decimal.Decimal, error) {
	if index < 0 || index >= len(items) {
		return nil, decimal.Zero, fmt.Errorf("%w: línea %d no existe", domain.ErrInvalidInput, index)
	}
	out := make([]entity.InvoiceItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	out = append(out, items[index+1:]...)
	return out, ComputeSubtotal(out), nil
}

// VerifyTotals comprueba que la cabecera coincida con la suma de sus líneas vigentes.
func VerifyTotals(inv *entity.Invoice, items []entity.InvoiceItem) error {
	if inv == nil {
		return fmt.Errorf("%w: factura nula", domain.ErrInvalidInput)
	}
	want, err := ComputeTotals(items, inv.TaxRate)
	if err != nil {
		return err
	}
	if !SameAmount(want.Subtotal, inv.Subtotal) {
		return fmt.Errorf("%w: subtotal %s no coincide con las líneas (%s)", domain.ErrConflict, inv.Subtotal, want.Subtotal)
	}
	if !SameAmount(want.GrandTotal, inv.GrandTotal) {
		return fmt.Errorf("%w: total %s no coincide con las líneas (%s)", domain.ErrConflict, inv.GrandTotal, want.GrandTotal)
	}
	return nil
}
