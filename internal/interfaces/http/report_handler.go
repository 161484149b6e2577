package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
)

// reportService lo implementa *analytics.ReportUseCase.
type reportService interface {
	GetSummary(ctx context.Context, month string) (*dto.ReportSummaryDTO, error)
}

// ReportHandler reportes agregados (solo admin).
type ReportHandler struct {
	uc reportService
}

// NewReportHandler construye el handler.
func NewReportHandler(uc reportService) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen mensual de facturación
// @Description  Total del mes contra el mes anterior, desglose por estado y por empleado.
// @Tags         reports
// @Produce      json
// @Param        month  query  string  false  "YYYY-MM (por defecto el mes en curso)"
// @Success      200  {object}  dto.ReportSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/summary [get]
func (h *ReportHandler) GetSummary(c *fiber.Ctx) error {
	var in dto.ReportSummaryRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "VALIDATION", "parámetros de consulta inválidos")
	}
	out, err := h.uc.GetSummary(c.UserContext(), in.Month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
