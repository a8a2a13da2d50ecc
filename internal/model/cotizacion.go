package model

import (
	"time"

	"github.com/google/uuid"
)

// Cotizacion estados. abierta is the only non-terminal one.
const (
	CotizacionAbierta   = "abierta"
	CotizacionCerrada   = "cerrada"
	CotizacionCancelada = "cancelada"
)

// Cotizacion is a parts request posted by a taller.
type Cotizacion struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TallerID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Titulo          string    `gorm:"not null"`
	VehiculoMarca   string    `gorm:"not null"`
	VehiculoModelo  string    `gorm:"not null"`
	VehiculoAnio    int       `gorm:"not null"`
	VehiculoPatente *string
	Categoria       string `gorm:"not null;index"`
	Descripcion     string
	Estado          string `gorm:"type:varchar(20);not null;default:'abierta'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ClosedAt        *time.Time

	Items  []CotizacionItem `gorm:"foreignKey:CotizacionID;constraint:OnDelete:CASCADE"`
	Taller *Taller          `gorm:"foreignKey:TallerID"`
}

func (Cotizacion) TableName() string { return "cotizaciones" }

// CotizacionItem is one requested part. Items are written once, with the cotización.
type CotizacionItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CotizacionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Posicion     int       `gorm:"not null"`
	Codigo       *string
	Nombre       string `gorm:"not null"`
	Descripcion  *string
	Marca        *string
	ImagenKey    *string
	Cantidad     int `gorm:"not null"`
}

func (CotizacionItem) TableName() string { return "cotizacion_items" }

// CotizacionVista records the first time a proveedor opened a cotización.
type CotizacionVista struct {
	CotizacionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProveedorID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	VistaAt      time.Time `gorm:"not null"`
}

func (CotizacionVista) TableName() string { return "cotizacion_vistas" }
