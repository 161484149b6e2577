package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// IsValidRole valida el rol.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, employee
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
