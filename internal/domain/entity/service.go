package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de conexión a red de los equipos del catálogo.
const (
	GridTypeOnGrid  = "OnGrid"
	GridTypeOffGrid = "OffGrid"
)

// Categorías fijas del catálogo.
const (
	CategorySolarPanels  = "Solar Panels"
	CategoryInverters    = "Inverters"
	CategoryBatteries    = "Batteries"
	CategoryMounting     = "Mounting Structures"
	CategoryCabling      = "Cables & Accessories"
	CategoryInstallation = "Installation"
)

// ServiceCategories lista las categorías válidas en el orden en que se muestran.
var ServiceCategories = []string{
	CategorySolarPanels,
	CategoryInverters,
	CategoryBatteries,
	CategoryMounting,
	CategoryCabling,
	CategoryInstallation,
}

// Service representa una entrada del catálogo (producto o servicio).
// Quantity nil significa que el producto no lleva control de existencias.
type Service struct {
	ID          string
	GridType    string
	Category    string
	ProductName string
	Rate        decimal.Decimal
	Quantity    *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available informa si la entrada puede agregarse a un carrito nuevo.
func (s *Service) Available() bool {
	return s.Quantity == nil || *s.Quantity > 0
}

// IsValidGridType valida el tipo de red.
func IsValidGridType(g string) bool {
	return g == GridTypeOnGrid || g == GridTypeOffGrid
}

// IsValidCategory valida la categoría contra la lista fija.
func IsValidCategory(c string) bool {
	for _, v := range ServiceCategories {
		if v == c {
			return true
		}
	}
	return false
}
