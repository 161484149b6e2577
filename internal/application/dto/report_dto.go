package dto

import "github.com/shopspring/decimal"

// ReportSummaryRequest parámetros para GET /api/reports/summary.
type ReportSummaryRequest struct {
	Month string `query:"month"` // YYYY-MM; por defecto el mes en curso
}

// StatusSummaryDTO facturas del mes agrupadas por estado de pago.
type StatusSummaryDTO struct {
	PaymentStatus string          `json:"payment_status"`
	Count         int             `json:"count"`
	Amount        decimal.Decimal `json:"amount"`
}

// EmployeeSummaryDTO facturación del mes por empleado.
type EmployeeSummaryDTO struct {
	EmployeeEmail string          `json:"employee_email"`
	Count         int             `json:"count"`
	Amount        decimal.Decimal `json:"amount"`
}

// ReportSummaryDTO respuesta de GET /api/reports/summary.
type ReportSummaryDTO struct {
	Month              string               `json:"month"`
	MonthLabel         string               `json:"month_label"` // ej: "Marzo 2026"
	InvoiceCount       int                  `json:"invoice_count"`
	MonthTotal         decimal.Decimal      `json:"month_total"`
	PreviousMonthTotal decimal.Decimal      `json:"previous_month_total"`
	ChangePct          *decimal.Decimal     `json:"change_pct"` // nil si el mes anterior es 0
	ByStatus           []StatusSummaryDTO   `json:"by_status"`
	ByEmployee         []EmployeeSummaryDTO `json:"by_employee"`
}
