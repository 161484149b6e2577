package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
)

// catalogService lo implementa *usecase.ServiceUseCase.
type catalogService interface {
	Create(ctx context.Context, in dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ServiceResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	List(ctx context.Context, in dto.ServiceListRequest) ([]dto.ServiceResponse, error)
}

// ServiceHandler maneja el catálogo de productos y servicios.
type ServiceHandler struct {
	uc catalogService
}

// NewServiceHandler construye el handler.
func NewServiceHandler(uc catalogService) *ServiceHandler {
	return &ServiceHandler{uc: uc}
}

// List godoc
// @Summary      Listar catálogo
// @Tags         services
// @Produce      json
// @Param        grid_type  query  string  false  "OnGrid | OffGrid"
// @Param        category   query  string  false  "categoría"
// @Success      200  {array}   dto.ServiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/services [get]
func (h *ServiceHandler) List(c *fiber.Ctx) error {
	var in dto.ServiceListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "VALIDATION", "parámetros de consulta inválidos")
	}
	list, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Entrada del catálogo por ID
// @Tags         services
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.ServiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/services/{id} [get]
func (h *ServiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Agregar al catálogo
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateServiceRequest  true  "grid_type, product_category, product_name, rate, quantity"
// @Success      201   {object}  dto.ServiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/services [post]
func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateServiceRequest
	if err := decodeStrict(c, &in); err != nil {
		return badRequest(c, "INVALID_BODY", err.Error())
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar entrada del catálogo
// @Description  PUT /api/services/update toma el id del cuerpo; PUT /api/services/{id} de la ruta.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id    path  string                    false  "ID"
// @Param        body  body  dto.UpdateServiceRequest  true  "campos a modificar"
// @Success      200   {object}  dto.ServiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/services/{id} [put]
func (h *ServiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateServiceRequest
	if err := decodeStrict(c, &in); err != nil {
		return badRequest(c, "INVALID_BODY", err.Error())
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
