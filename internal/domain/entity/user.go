package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)

// Estados de cuenta.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa a una persona que trabaja en un área de producción.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Area         Area
	Role         string // admin, operador
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor es el usuario autenticado que invoca una operación (lo entrega el proveedor de sesión).
type Actor struct {
	UserID string
	Name   string
	Area   Area
	Role   string
}

// IsAdmin indica si el actor tiene privilegios de administración.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Area == AreaAdmin
}

// In indica si el actor pertenece al área indicada.
func (a Actor) In(area Area) bool {
	return a.Area == area
}
