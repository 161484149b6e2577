package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una factura. La única transición válida es Pending → Paid.
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
)

// PaymentMethodNone es el método registrado mientras la factura no está pagada.
const PaymentMethodNone = "N/A"

// Invoice representa la cabecera de una factura.
// GrandTotal siempre es Subtotal + TaxAmount de las líneas vigentes.
type Invoice struct {
	ID            string
	Number        string // INV-<unix millis>, único
	PaymentStatus string
	PaymentMethod string
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal // porcentaje 0–100
	TaxAmount     decimal.Decimal
	GrandTotal    decimal.Decimal // total_amount en la tabla
	EmployeeEmail string
	Version       int64 // se incrementa en cada reconciliación de líneas
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPaid informa si la factura ya fue pagada.
func (i *Invoice) IsPaid() bool {
	return i.PaymentStatus == PaymentStatusPaid
}
