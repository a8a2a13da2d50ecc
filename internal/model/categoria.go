package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria is a parts category (Frenos, Suspensión, Motor...). Each cotización
// carries exactly one; a proveedor lists the ones it serves, and an empty list
// means every categoría. Deactivated categorías stay on existing rows but are
// rejected on new cotizaciones and proveedor profiles.
type Categoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"type:text;not null"` // uni_categorias_nombre
	Descripcion *string   `gorm:"type:text"`
	Activo      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Categoria) TableName() string { return "categorias" }
