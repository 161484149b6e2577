package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de solo lectura sobre invoices.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// SumTotals cantidad de facturas y suma de total_amount en [from, to).
func (r *ReportRepo) SumTotals(ctx context.Context, from, to time.Time) (int, decimal.Decimal, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM invoices
		WHERE created_at >= $1 AND created_at < $2`
	var (
		count  int
		amount decimal.Decimal
	)
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&count, &amount); err != nil {
		return 0, decimal.Zero, wrapErr("sum invoices", err)
	}
	return count, amount, nil
}

// TotalsByStatus agrupa por estado de pago.
func (r *ReportRepo) TotalsByStatus(ctx context.Context, from, to time.Time) ([]repository.StatusTotals, error) {
	query := `
		SELECT payment_status, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM invoices
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY payment_status
		ORDER BY payment_status`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, wrapErr("totals by status", err)
	}
	defer rows.Close()

	var out []repository.StatusTotals
	for rows.Next() {
		var s repository.StatusTotals
		if err := rows.Scan(&s.PaymentStatus, &s.Count, &s.Amount); err != nil {
			return nil, wrapErr("scan totals by status", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("totals by status", err)
	}
	return out, nil
}

// TotalsByEmployee agrupa por empleado, mayor facturación primero.
func (r *ReportRepo) TotalsByEmployee(ctx context.Context, from, to time.Time) ([]repository.EmployeeTotals, error) {
	query := `
		SELECT employee_email, COUNT(*), COALESCE(SUM(total_amount), 0) AS amount
		FROM invoices
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY employee_email
		ORDER BY amount DESC, employee_email`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, wrapErr("totals by employee", err)
	}
	defer rows.Close()

	var out []repository.EmployeeTotals
	for rows.Next() {
		var e repository.EmployeeTotals
		if err := rows.Scan(&e.EmployeeEmail, &e.Count, &e.Amount); err != nil {
			return nil, wrapErr("scan totals by employee", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("totals by employee", err)
	}
	return out, nil
}
