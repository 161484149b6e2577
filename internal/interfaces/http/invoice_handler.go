package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
)

// invoiceService contrato del ciclo de vida de la factura; lo implementa *billing.InvoiceUseCase.
type invoiceService interface {
	CreateInvoice(ctx context.Context, session *entity.Session, in dto.CreateInvoiceRequest) (*dto.InvoiceDetailResponse, error)
	GetInvoice(ctx context.Context, session *entity.Session, id string) (*dto.InvoiceDetailResponse, error)
	ListInvoices(ctx context.Context, in dto.InvoiceListRequest) (*dto.InvoiceListResponse, error)
	ReconcileItems(ctx context.Context, session *entity.Session, invoiceID string, in dto.UpdateInvoiceItemsRequest) (*dto.InvoiceDetailResponse, error)
	PayInvoice(ctx context.Context, session *entity.Session, invoiceID string, in dto.PayInvoiceRequest) (*dto.InvoiceResponse, error)
}

// invoicePDFService lo implementa *billing.PDFUseCase.
type invoicePDFService interface {
	DownloadInvoicePDF(ctx context.Context, session *entity.Session, invoiceID string) ([]byte, string, error)
}

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc    invoiceService
	pdfUC invoicePDFService
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc invoiceService, pdfUC invoicePDFService) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdfUC: pdfUC}
}

// List godoc
// @Summary      Listar facturas
// @Description  Un empleado solo ve sus propias facturas; un admin puede filtrar por employee_email.
// @Tags         invoices
// @Produce      json
// @Param        month           query  string  false  "YYYY-MM"
// @Param        status          query  string  false  "Pending | Paid"
// @Param        employee_email  query  string  false  "solo admin"
// @Param        limit           query  int     false  "máximo 200"
// @Param        offset          query  int     false  "desplazamiento"
// @Success      200   {object}  dto.InvoiceListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var in dto.InvoiceListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "VALIDATION", "parámetros de consulta inválidos")
	}
	if GetRole(c) != entity.RoleAdmin {
		in.EmployeeEmail = GetEmail(c)
	}
	out, err := h.uc.ListInvoices(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear factura desde el carrito
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "cart_items, tax_rate"
// @Success      201   {object}  dto.InvoiceDetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := decodeStrict(c, &in); err != nil {
		return badRequest(c, "INVALID_BODY", err.Error())
	}
	out, err := h.uc.CreateInvoice(c.UserContext(), GetSession(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Detalle de factura
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceDetailResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetInvoice(c.UserContext(), GetSession(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateItems godoc
// @Summary      Reemplazar las líneas de una factura
// @Description  Reemplaza el conjunto completo de líneas y recalcula totales en una sola transacción.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID de la factura"
// @Param        body  body  dto.UpdateInvoiceItemsRequest  true  "items, tax_rate | total_amount, version"
// @Success      200   {object}  dto.InvoiceDetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateItems(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceItemsRequest
	if err := decodeStrict(c, &in); err != nil {
		return badRequest(c, "INVALID_BODY", err.Error())
	}
	out, err := h.uc.ReconcileItems(c.UserContext(), GetSession(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Pay godoc
// @Summary      Marcar factura como pagada
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la factura"
// @Param        body  body  dto.PayInvoiceRequest  true  "payment_method"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/pay/{id} [put]
func (h *InvoiceHandler) Pay(c *fiber.Ctx) error {
	var in dto.PayInvoiceRequest
	if err := decodeStrict(c, &in); err != nil {
		return badRequest(c, "INVALID_BODY", err.Error())
	}
	out, err := h.uc.PayInvoice(c.UserContext(), GetSession(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar PDF de la factura
// @Tags         invoices
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdfUC.DownloadInvoicePDF(c.UserContext(), GetSession(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}
