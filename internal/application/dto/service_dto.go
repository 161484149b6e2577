package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateServiceRequest entrada para crear una entrada del catálogo.
type CreateServiceRequest struct {
	GridType        string          `json:"grid_type"`
	ProductCategory string          `json:"product_category"`
	ProductName     string          `json:"product_name"`
	Rate            decimal.Decimal `json:"rate"`
	Quantity        *int64          `json:"quantity,omitempty"` // nil = sin control de existencias
}

// UpdateServiceRequest entrada para actualizar el catálogo (campos opcionales).
// ID solo se usa en PUT /api/services/update; en PUT /api/services/:id manda la ruta.
// ClearQuantity deja la entrada sin control de existencias.
type UpdateServiceRequest struct {
	ID              string           `json:"id,omitempty"`
	GridType        *string          `json:"grid_type,omitempty"`
	ProductCategory *string          `json:"product_category,omitempty"`
	ProductName     *string          `json:"product_name,omitempty"`
	Rate            *decimal.Decimal `json:"rate,omitempty"`
	Quantity        *int64           `json:"quantity,omitempty"`
	ClearQuantity   bool             `json:"clear_quantity,omitempty"`
}

// ServiceListRequest filtros para GET /api/services.
type ServiceListRequest struct {
	GridType string `query:"grid_type"`
	Category string `query:"category"`
}

// ServiceResponse salida de una entrada del catálogo.
type ServiceResponse struct {
	ID              string          `json:"id"`
	GridType        string          `json:"grid_type"`
	ProductCategory string          `json:"product_category"`
	ProductName     string          `json:"product_name"`
	Rate            decimal.Decimal `json:"rate"`
	Quantity        *int64          `json:"quantity"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
