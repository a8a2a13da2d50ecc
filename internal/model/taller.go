package model

import (
	"time"

	"github.com/google/uuid"
)

// Taller is the requester profile (auto-repair workshop) of a Usuario with rol
// "taller". Region drives which proveedores see its cotizaciones.
type Taller struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"not null"`
	Region    string    `gorm:"not null;index"`
	Direccion *string
	Telefono  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Taller) TableName() string { return "talleres" }
