package dto

import (
	"time"

	"github.com/google/uuid"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────

// Nombre is matched case-insensitively against cotización and proveedor
// categorías, so "frenos" and "Frenos" cannot coexist.
type CrearCategoriaRequest struct {
	Nombre      string  `json:"nombre"      validate:"required,min=2,max=100"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=300"`
}

type ActualizarCategoriaRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=100"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=300"`
	Activo      *bool   `json:"activo"`
}

type CategoriaFilter struct {
	IncluirInactivas bool `form:"incluir_inactivas"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type CategoriaResponse struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	Activo      bool      `json:"activo"`
	CreatedAt   time.Time `json:"created_at"`
}
