package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

type PedidoFilter struct {
	Estado string `form:"estado" validate:"omitempty,oneof=pendiente confirmado entregado cancelado"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

func (f *PedidoFilter) Normalize() {
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

type CrearPedidoRequest struct {
	OfertaID         uuid.UUID `json:"oferta_id"         validate:"required"`
	DireccionEntrega string    `json:"direccion_entrega" validate:"required,min=1,max=300"`
	Notas            *string   `json:"notas"             validate:"omitempty,max=1000"`
}

type CambiarEstadoPedidoRequest struct {
	Estado string  `json:"estado" validate:"required,oneof=pendiente confirmado entregado cancelado"`
	Motivo *string `json:"motivo" validate:"omitempty,max=500"`
}

type CancelarPedidoRequest struct {
	Motivo *string `json:"motivo" validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PedidoResponse struct {
	ID                   uuid.UUID       `json:"id"`
	CotizacionID         uuid.UUID       `json:"cotizacion_id"`
	OfertaID             uuid.UUID       `json:"oferta_id"`
	TallerID             uuid.UUID       `json:"taller_id"`
	ProveedorID          uuid.UUID       `json:"proveedor_id"`
	Total                decimal.Decimal `json:"total"`
	DireccionEntrega     string          `json:"direccion_entrega"`
	Notas                *string         `json:"notas,omitempty"`
	Estado               string          `json:"estado"`
	FechaEntregaEstimada time.Time       `json:"fecha_entrega_estimada"`
	EntregadoAt          *time.Time      `json:"entregado_at,omitempty"`
	CanceladoPor         *string         `json:"cancelado_por,omitempty"`
	MotivoCancelacion    *string         `json:"motivo_cancelacion,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type PedidoListResponse struct {
	Data       []PedidoResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}
