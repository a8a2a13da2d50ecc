package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Oferta is a proveedor's priced answer to a Cotizacion.
// At most one per (cotizacion_id, proveedor_id); see uq_ofertas_cotizacion_proveedor.
type Oferta struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CotizacionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ofertas_cotizacion_proveedor"`
	ProveedorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ofertas_cotizacion_proveedor"`
	DiasEntrega  int       `gorm:"not null;default:0"` // 0 = inmediata
	Comentarios  string
	CreatedAt    time.Time

	Items     []OfertaItem `gorm:"foreignKey:OfertaID;constraint:OnDelete:CASCADE"`
	Proveedor *Proveedor   `gorm:"foreignKey:ProveedorID"`
}

func (Oferta) TableName() string { return "ofertas" }

type OfertaItem struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OfertaID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Posicion         int        `gorm:"not null"`
	CotizacionItemID *uuid.UUID `gorm:"type:uuid"`
	Nombre           string     `gorm:"not null"`
	Marca            *string
	Cantidad         int             `gorm:"not null"`
	PrecioUnitario   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Disponible       bool            `gorm:"not null;default:true"`
	Nota             *string
}

func (OfertaItem) TableName() string { return "oferta_items" }
