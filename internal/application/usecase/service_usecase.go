package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/storetimeout"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
)

// ServiceUseCase casos de uso del catálogo de productos y servicios.
// Las ediciones del catálogo no alteran facturas existentes: las líneas guardan su propia copia.
type ServiceUseCase struct {
	repo  repository.ServiceRepository
	store storetimeout.Limit
}

// NewServiceUseCase construye el caso de uso.
func NewServiceUseCase(repo repository.ServiceRepository) *ServiceUseCase {
	return &ServiceUseCase{repo: repo}
}

// WithStoreTimeout acota cada operación contra el repositorio.
func (uc *ServiceUseCase) WithStoreTimeout(d time.Duration) *ServiceUseCase {
	uc.store = storetimeout.Limit(d)
	return uc
}

// Create agrega una entrada al catálogo.
func (uc *ServiceUseCase) Create(ctx context.Context, in dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	svc := &entity.Service{
		ID:          uuid.New().String(),
		GridType:    strings.TrimSpace(in.GridType),
		Category:    strings.TrimSpace(in.ProductCategory),
		ProductName: strings.TrimSpace(in.ProductName),
		Rate:        in.Rate,
		Quantity:    in.Quantity,
	}
	if err := validateService(svc); err != nil {
		return nil, err
	}
	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()
	if err := uc.repo.Create(ctx, svc); err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	resp := toServiceResponse(svc)
	return &resp, nil
}

// GetByID obtiene una entrada del catálogo.
func (uc *ServiceUseCase) GetByID(ctx context.Context, id string) (*dto.ServiceResponse, error) {
	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	svc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	resp := toServiceResponse(svc)
	return &resp, nil
}

// Update aplica los campos presentes. id vacío toma el id del body.
func (uc *ServiceUseCase) Update(ctx context.Context, id string, in dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = strings.TrimSpace(in.ID)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: id es obligatorio", domain.ErrInvalidInput)
	}

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	svc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	if in.GridType != nil {
		svc.GridType = strings.TrimSpace(*in.GridType)
	}
	if in.ProductCategory != nil {
		svc.Category = strings.TrimSpace(*in.ProductCategory)
	}
	if in.ProductName != nil {
		svc.ProductName = strings.TrimSpace(*in.ProductName)
	}
	if in.Rate != nil {
		svc.Rate = *in.Rate
	}
	if in.ClearQuantity {
		svc.Quantity = nil
	} else if in.Quantity != nil {
		q := *in.Quantity
		svc.Quantity = &q
	}
	if err := validateService(svc); err != nil {
		return nil, err
	}
	svc.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, svc); err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	resp := toServiceResponse(svc)
	return &resp, nil
}

// List lista el catálogo (más recientes primero) con filtros opcionales.
func (uc *ServiceUseCase) List(ctx context.Context, in dto.ServiceListRequest) ([]dto.ServiceResponse, error) {
	filter := repository.ServiceFilter{
		GridType: strings.TrimSpace(in.GridType),
		Category: strings.TrimSpace(in.Category),
	}
	if filter.GridType != "" && !entity.IsValidGridType(filter.GridType) {
		return nil, fmt.Errorf("%w: grid_type desconocido", domain.ErrInvalidInput)
	}
	if filter.Category != "" && !entity.IsValidCategory(filter.Category) {
		return nil, fmt.Errorf("%w: category desconocida", domain.ErrInvalidInput)
	}

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	out := make([]dto.ServiceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toServiceResponse(s))
	}
	return out, nil
}

func validateService(s *entity.Service) error {
	switch {
	case !entity.IsValidGridType(s.GridType):
		return fmt.Errorf("%w: grid_type debe ser %s o %s", domain.ErrInvalidInput, entity.GridTypeOnGrid, entity.GridTypeOffGrid)
	case !entity.IsValidCategory(s.Category):
		return fmt.Errorf("%w: product_category debe ser una de %s", domain.ErrInvalidInput, strings.Join(entity.ServiceCategories, ", "))
	case s.ProductName == "":
		return fmt.Errorf("%w: product_name es obligatorio", domain.ErrInvalidInput)
	case s.Rate.IsNegative():
		return fmt.Errorf("%w: rate debe ser >= 0", domain.ErrInvalidInput)
	case s.Quantity != nil && *s.Quantity < 0:
		return fmt.Errorf("%w: quantity debe ser >= 0", domain.ErrInvalidInput)
	}
	return nil
}

func toServiceResponse(s *entity.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:              s.ID,
		GridType:        s.GridType,
		ProductCategory: s.Category,
		ProductName:     s.ProductName,
		Rate:            s.Rate.Round(2),
		Quantity:        s.Quantity,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
