package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pedido estados. entregado and cancelado are terminal.
const (
	PedidoPendiente  = "pendiente"
	PedidoConfirmado = "confirmado"
	PedidoEntregado  = "entregado"
	PedidoCancelado  = "cancelado"
)

// Pedido is the binding order created when a taller accepts one Oferta.
// CotizacionID is unique: one pedido per cotización.
type Pedido struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CotizacionID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_pedidos_cotizacion"`
	OfertaID             uuid.UUID       `gorm:"type:uuid;not null"`
	TallerID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProveedorID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total                decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DireccionEntrega     string          `gorm:"not null"`
	Notas                *string
	Estado               string    `gorm:"type:varchar(20);not null;default:'pendiente'"`
	FechaEntregaEstimada time.Time `gorm:"not null"`
	EntregadoAt          *time.Time
	CanceladoPor         *string `gorm:"type:varchar(20)"`
	MotivoCancelacion    *string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Cotizacion *Cotizacion `gorm:"foreignKey:CotizacionID"`
	Oferta     *Oferta     `gorm:"foreignKey:OfertaID"`
}

func (Pedido) TableName() string { return "pedidos" }

// Terminal reports whether no further transition is possible.
func (p *Pedido) Terminal() bool {
	return p.Estado == PedidoEntregado || p.Estado == PedidoCancelado
}
