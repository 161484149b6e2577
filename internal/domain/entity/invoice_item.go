package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItem representa una línea de factura.
// ProductName y Rate son una copia del catálogo al momento de facturar; no siguen
// ediciones posteriores del catálogo. ServiceID queda vacío si la línea es libre
// o si el producto se eliminó del catálogo.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	ServiceID   string
	ProductName string
	Rate        decimal.Decimal
	Quantity    int64
	CreatedAt   time.Time
}

// Subtotal devuelve rate * quantity; nunca se almacena por separado.
func (it InvoiceItem) Subtotal() decimal.Decimal {
	return it.Rate.Mul(decimal.NewFromInt(it.Quantity))
}
