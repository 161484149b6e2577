package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItemRequest línea del carrito. Con ServiceID se copian nombre y tarifa del catálogo;
// sin ServiceID la línea es libre y ProductName y Rate son obligatorios.
// Quantity 0 (u omitida) equivale a 1.
type CartItemRequest struct {
	ServiceID   string           `json:"service_id,omitempty"`
	ProductName string           `json:"product_name,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	Quantity    int64            `json:"quantity"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// EmployeeEmail es opcional: por defecto se usa el email de la sesión y solo un admin
// puede facturar a nombre de otro empleado.
type CreateInvoiceRequest struct {
	EmployeeEmail string            `json:"employee_email,omitempty"`
	CartItems     []CartItemRequest `json:"cart_items"`
	TaxRate       *decimal.Decimal  `json:"tax_rate,omitempty"` // porcentaje 0–100
}

// InvoiceItemRequest línea deseada en una reconciliación.
// InvoiceID se acepta por compatibilidad pero siempre se reemplaza por el id de la ruta.
type InvoiceItemRequest struct {
	InvoiceID   string           `json:"invoice_id,omitempty"`
	ServiceID   string           `json:"service_id,omitempty"`
	ProductName string           `json:"product_name"`
	Rate        *decimal.Decimal `json:"rate"` // obligatorio
	Quantity    int64            `json:"quantity"`
}

// UpdateInvoiceItemsRequest body para PUT /api/invoices/:id.
// Se envía el conjunto completo de líneas y el total explícito o la tasa de impuesto.
// Sin ninguno de los dos se conserva la tasa vigente de la factura.
// Version activa la verificación optimista contra la versión leída por el cliente.
type UpdateInvoiceItemsRequest struct {
	Items      []InvoiceItemRequest `json:"items"`
	TaxRate    *decimal.Decimal     `json:"tax_rate,omitempty"`
	GrandTotal *decimal.Decimal     `json:"total_amount,omitempty"`
	Version    *int64               `json:"version,omitempty"`
}

// PayInvoiceRequest body para PUT /api/invoices/pay/:id.
type PayInvoiceRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// InvoiceListRequest parámetros para GET /api/invoices.
type InvoiceListRequest struct {
	Month         string `query:"month"` // YYYY-MM
	PaymentStatus string `query:"status"`
	EmployeeEmail string `query:"employee_email"`
	Limit         int    `query:"limit"`
	Offset        int    `query:"offset"`
}

// InvoiceResponse cabecera de factura. Los montos se presentan redondeados a centavos.
type InvoiceResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	EmployeeEmail string          `json:"employee_email"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceItemResponse línea de factura en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	ServiceID   string          `json:"service_id,omitempty"`
	ProductName string          `json:"product_name"`
	Rate        decimal.Decimal `json:"rate"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceDetailResponse respuesta de GET /api/invoices/:id.
type InvoiceDetailResponse struct {
	Invoice InvoiceResponse       `json:"invoice"`
	Items   []InvoiceItemResponse `json:"items"`
}

// InvoiceListResponse lista de facturas con la suma de sus totales.
type InvoiceListResponse struct {
	Items       []InvoiceResponse `json:"items"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Page        PageResponse      `json:"page"`
}
