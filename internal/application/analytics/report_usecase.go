// Package analytics contiene los casos de uso de reportes para el administrador.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/storetimeout"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
)

// ReportUseCase genera el resumen mensual de facturación.
//
// Fuente de datos: ReportRepository (consultas read-only).
type ReportUseCase struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
	store      storetimeout.Limit
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(reportRepo repository.ReportRepository) *ReportUseCase {
	return &ReportUseCase{reportRepo: reportRepo, now: time.Now}
}

// WithClock fija el reloj usado para el mes por defecto (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// WithStoreTimeout acota el conjunto de consultas del resumen.
func (uc *ReportUseCase) WithStoreTimeout(d time.Duration) *ReportUseCase {
	uc.store = storetimeout.Limit(d)
	return uc
}

// GetSummary construye el resumen del mes indicado ("YYYY-MM"; vacío = mes en curso).
//
// Cuatro consultas en paralelo:
//  1. SumTotals(mes)          → InvoiceCount + MonthTotal
//  2. SumTotals(mes anterior) → PreviousMonthTotal
//  3. TotalsByStatus(mes)     → ByStatus
//  4. TotalsByEmployee(mes)   → ByEmployee
func (uc *ReportUseCase) GetSummary(ctx context.Context, month string) (*dto.ReportSummaryDTO, error) {
	start, err := monthStart(month, uc.now())
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 1, 0)
	prevStart := start.AddDate(0, -1, 0)

	var (
		count      int
		current    decimal.Decimal
		previous   decimal.Decimal
		byStatus   []repository.StatusTotals
		byEmployee []repository.EmployeeTotals
	)

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, current, err = uc.reportRepo.SumTotals(gctx, start, end)
		if err != nil {
			return fmt.Errorf("reporte: totales del mes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		_, previous, err = uc.reportRepo.SumTotals(gctx, prevStart, start)
		if err != nil {
			return fmt.Errorf("reporte: totales del mes anterior: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		byStatus, err = uc.reportRepo.TotalsByStatus(gctx, start, end)
		if err != nil {
			return fmt.Errorf("reporte: por estado: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		byEmployee, err = uc.reportRepo.TotalsByEmployee(gctx, start, end)
		if err != nil {
			return fmt.Errorf("reporte: por empleado: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, storetimeout.Error(ctx, err)
	}

	out := &dto.ReportSummaryDTO{
		Month:              start.Format("2006-01"),
		MonthLabel:         monthLabel(start),
		InvoiceCount:       count,
		MonthTotal:         current.Round(2),
		PreviousMonthTotal: previous.Round(2),
		ChangePct:          changePct(current, previous),
		ByStatus:           make([]dto.StatusSummaryDTO, 0, len(byStatus)),
		ByEmployee:         make([]dto.EmployeeSummaryDTO, 0, len(byEmployee)),
	}
	for _, s := range byStatus {
		out.ByStatus = append(out.ByStatus, dto.StatusSummaryDTO{
			PaymentStatus: s.PaymentStatus,
			Count:         s.Count,
			Amount:        s.Amount.Round(2),
		})
	}
	for _, e := range byEmployee {
		out.ByEmployee = append(out.ByEmployee, dto.EmployeeSummaryDTO{
			EmployeeEmail: e.EmployeeEmail,
			Count:         e.Count,
			Amount:        e.Amount.Round(2),
		})
	}
	return out, nil
}

func monthStart(month string, now time.Time) (time.Time, error) {
	if month == "" {
		now = now.UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month debe tener formato YYYY-MM", domain.ErrInvalidInput)
	}
	return t.UTC(), nil
}

// changePct variación porcentual respecto del mes anterior; nil si el anterior es 0.
func changePct(current, previous decimal.Decimal) *decimal.Decimal {
	if previous.IsZero() {
		return nil
	}
	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
	return &pct
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
