package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusTotals agregado de facturas por estado de pago.
type StatusTotals struct {
	PaymentStatus string
	Count         int
	Amount        decimal.Decimal
}

// EmployeeTotals agregado de facturas por empleado.
type EmployeeTotals struct {
	EmployeeEmail string
	Count         int
	Amount        decimal.Decimal
}

// ReportRepository consultas de solo lectura para los reportes del administrador.
type ReportRepository interface {
	// SumTotals devuelve cantidad y suma de total_amount en [from, to).
	SumTotals(ctx context.Context, from, to time.Time) (count int, amount decimal.Decimal, err error)
	TotalsByStatus(ctx context.Context, from, to time.Time) ([]StatusTotals, error)
	TotalsByEmployee(ctx context.Context, from, to time.Time) ([]EmployeeTotals, error)
}
