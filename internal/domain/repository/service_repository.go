package repository

import (
	"context"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
)

// ServiceFilter criterios para listar el catálogo.
type ServiceFilter struct {
	GridType string
	Category string
}

// ServiceRepository define el puerto de persistencia para el catálogo (DIP).
type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	GetByID(ctx context.Context, id string) (*entity.Service, error)
	Update(ctx context.Context, service *entity.Service) error
	List(ctx context.Context, filter ServiceFilter) ([]*entity.Service, error)
}
