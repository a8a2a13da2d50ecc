package dto

import (
	"time"

	"github.com/google/uuid"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// CotizacionFilter is bound from the query string of GET /v1/cotizaciones and
// GET /v1/cotizaciones/visibles.
type CotizacionFilter struct {
	Estado    string `form:"estado"    validate:"omitempty,oneof=abierta cerrada cancelada"`
	Categoria string `form:"categoria"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// Normalize applies the defaults when the filter was built outside gin binding.
func (f *CotizacionFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CotizacionItemInput struct {
	Codigo      *string `json:"codigo"`
	Nombre      string  `json:"nombre"      validate:"required,min=1,max=200"`
	Descripcion *string `json:"descripcion"`
	Marca       *string `json:"marca"`
	ImagenKey   *string `json:"imagen_key"`
	Cantidad    int     `json:"cantidad"    validate:"min=1"`
}

type CrearCotizacionRequest struct {
	Titulo          string                `json:"titulo"           validate:"required,min=3,max=200"`
	VehiculoMarca   string                `json:"vehiculo_marca"   validate:"required"`
	VehiculoModelo  string                `json:"vehiculo_modelo"  validate:"required"`
	VehiculoAnio    int                   `json:"vehiculo_anio"    validate:"required,min=1900,max=2100"`
	VehiculoPatente *string               `json:"vehiculo_patente"`
	Categoria       string                `json:"categoria"        validate:"required"`
	Descripcion     string                `json:"descripcion"      validate:"max=2000"`
	Items           []CotizacionItemInput `json:"items"            validate:"required,min=1,dive"`
}

// ActualizarCotizacionRequest edits header fields only; items are immutable.
type ActualizarCotizacionRequest struct {
	Titulo          *string `json:"titulo"           validate:"omitempty,min=3,max=200"`
	VehiculoMarca   *string `json:"vehiculo_marca"   validate:"omitempty,min=1"`
	VehiculoModelo  *string `json:"vehiculo_modelo"  validate:"omitempty,min=1"`
	VehiculoAnio    *int    `json:"vehiculo_anio"    validate:"omitempty,min=1900,max=2100"`
	VehiculoPatente *string `json:"vehiculo_patente"`
	Descripcion     *string `json:"descripcion"      validate:"omitempty,max=2000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CotizacionItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Posicion    int       `json:"posicion"`
	Codigo      *string   `json:"codigo,omitempty"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	Marca       *string   `json:"marca,omitempty"`
	ImagenKey   *string   `json:"imagen_key,omitempty"`
	ImagenURL   *string   `json:"imagen_url,omitempty"`
	Cantidad    int       `json:"cantidad"`
}

type CotizacionResponse struct {
	ID              uuid.UUID                `json:"id"`
	TallerID        uuid.UUID                `json:"taller_id"`
	TallerNombre    string                   `json:"taller_nombre,omitempty"`
	Region          string                   `json:"region,omitempty"`
	Titulo          string                   `json:"titulo"`
	VehiculoMarca   string                   `json:"vehiculo_marca"`
	VehiculoModelo  string                   `json:"vehiculo_modelo"`
	VehiculoAnio    int                      `json:"vehiculo_anio"`
	VehiculoPatente *string                  `json:"vehiculo_patente,omitempty"`
	Categoria       string                   `json:"categoria"`
	Descripcion     string                   `json:"descripcion"`
	Estado          string                   `json:"estado"`
	CreatedAt       time.Time                `json:"created_at"`
	ClosedAt        *time.Time               `json:"closed_at,omitempty"`
	CantidadOfertas *int64                   `json:"cantidad_ofertas,omitempty"`
	Vista           *bool                    `json:"vista,omitempty"`
	Items           []CotizacionItemResponse `json:"items"`
}

type CotizacionListResponse struct {
	Data       []CotizacionResponse `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

// TotalPages rounds up; zero rows is zero pages.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
