package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OfertaItemInput struct {
	CotizacionItemID *uuid.UUID      `json:"cotizacion_item_id"`
	Nombre           string          `json:"nombre"          validate:"required,min=1,max=200"`
	Marca            *string         `json:"marca"`
	Cantidad         int             `json:"cantidad"        validate:"min=1"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario" validate:"min=0"`
	Disponible       *bool           `json:"disponible"` // nil = true
	Nota             *string         `json:"nota"`
}

type CrearOfertaRequest struct {
	DiasEntrega int               `json:"dias_entrega" validate:"min=0,max=365"`
	Comentarios string            `json:"comentarios"  validate:"max=2000"`
	Items       []OfertaItemInput `json:"items"        validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OfertaItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	Posicion         int             `json:"posicion"`
	CotizacionItemID *uuid.UUID      `json:"cotizacion_item_id,omitempty"`
	Nombre           string          `json:"nombre"`
	Marca            *string         `json:"marca,omitempty"`
	Cantidad         int             `json:"cantidad"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Disponible       bool            `json:"disponible"`
	Nota             *string         `json:"nota,omitempty"`
}

type OfertaResponse struct {
	ID               uuid.UUID            `json:"id"`
	CotizacionID     uuid.UUID            `json:"cotizacion_id"`
	ProveedorID      uuid.UUID            `json:"proveedor_id"`
	ProveedorNombre  string               `json:"proveedor_nombre,omitempty"`
	DiasEntrega      int                  `json:"dias_entrega"`
	Comentarios      string               `json:"comentarios"`
	Total            decimal.Decimal      `json:"total"`
	ItemsDisponibles int                  `json:"items_disponibles"`
	ItemsTotales     int                  `json:"items_totales"`
	Cobertura        decimal.Decimal      `json:"cobertura"`
	CreatedAt        time.Time            `json:"created_at"`
	Items            []OfertaItemResponse `json:"items"`
}

// RankingResponse is GET /v1/cotizaciones/:id/ranking. Ofertas is the best-offer
// order; Comparativa is the same offers by price only.
type RankingResponse struct {
	CotizacionID  uuid.UUID        `json:"cotizacion_id"`
	MejorOfertaID *uuid.UUID       `json:"mejor_oferta_id"`
	Ofertas       []OfertaResponse `json:"ofertas"`
	Comparativa   []OfertaResponse `json:"comparativa"`
}
