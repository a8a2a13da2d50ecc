package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles accepted in Usuario.Rol and in the JWT "rol" claim.
const (
	RolTaller        = "taller"
	RolProveedor     = "proveedor"
	RolAdministrador = "administrador"
)

// Values of the JWT "typ" claim. Refresh tokens are only accepted by
// POST /v1/auth/refresh.
const (
	TokenAcceso  = "access"
	TokenRefresh = "refresh"
)

// Usuario stores system users with role-based access.
// Talleres and proveedores also own a profile row keyed by the same ID.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
