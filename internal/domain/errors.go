package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists   = errors.New("el email ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("credenciales inválidas")
	ErrUnauthenticated      = errors.New("sesión ausente, inválida o expirada")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInvalidState         = errors.New("transición de estado no permitida")
	ErrOutOfStock           = errors.New("producto sin existencias")
	ErrReconciliationFailed = errors.New("no se pudieron reemplazar las líneas de la factura")
	ErrTransient            = errors.New("almacenamiento no disponible, reintente")
)
