package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Proveedor is the supplier profile of a Usuario with rol "proveedor".
// ID is the usuario ID. Categorias empty means "all categories";
// Regiones is the coverage and an empty list matches nothing.
type Proveedor struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	RazonSocial string         `gorm:"not null"`
	CUIT        *string        `gorm:"column:cuit"`
	Telefono    *string
	Email       *string
	Categorias  pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Regiones    pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Activo      bool           `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
