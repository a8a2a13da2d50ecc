package dto

import "github.com/google/uuid"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ActualizarTallerRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=150"`
	Region    *string `json:"region"    validate:"omitempty,min=2,max=100"`
	Direccion *string `json:"direccion" validate:"omitempty,max=300"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=40"`
}

type ActualizarProveedorRequest struct {
	RazonSocial *string  `json:"razon_social" validate:"omitempty,min=2,max=150"`
	CUIT        *string  `json:"cuit"         validate:"omitempty,max=20"`
	Telefono    *string  `json:"telefono"     validate:"omitempty,max=40"`
	Email       *string  `json:"email"        validate:"omitempty,email"`
	Categorias  []string `json:"categorias"   validate:"omitempty,dive,min=1"`
	Regiones    []string `json:"regiones"     validate:"omitempty,dive,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TallerResponse struct {
	ID        uuid.UUID `json:"id"`
	Nombre    string    `json:"nombre"`
	Region    string    `json:"region"`
	Direccion *string   `json:"direccion,omitempty"`
	Telefono  *string   `json:"telefono,omitempty"`
}

type ProveedorResponse struct {
	ID          uuid.UUID `json:"id"`
	RazonSocial string    `json:"razon_social"`
	CUIT        *string   `json:"cuit,omitempty"`
	Telefono    *string   `json:"telefono,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Categorias  []string  `json:"categorias"`
	Regiones    []string  `json:"regiones"`
	Activo      bool      `json:"activo"`
}
