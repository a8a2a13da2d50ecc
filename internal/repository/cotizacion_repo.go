package repository

import (
	"context"
	"time"

	"findautopart/internal/dto"
	"findautopart/internal/matching"
	"findautopart/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Bloqueo is the row lock strength taken by FindByIDLocked.
type Bloqueo string

const (
	BloqueoCompartido Bloqueo = "SHARE"  // FOR SHARE
	BloqueoExclusivo  Bloqueo = "UPDATE" // FOR UPDATE
)

type CotizacionRepository interface {
	// Create inserts the cotización and its items.
	Create(ctx context.Context, c *model.Cotizacion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cotizacion, error)
	// FindByIDLocked reads the row under a lock held until tx ends. Items are not loaded.
	FindByIDLocked(ctx context.Context, tx *gorm.DB, id uuid.UUID, modo Bloqueo) (*model.Cotizacion, error)
	// ActualizarCabecera writes header fields if the cotización is still abierta.
	ActualizarCabecera(ctx context.Context, c *model.Cotizacion) (bool, error)
	// CambiarEstado moves id from desde to hacia; false when the row was not in desde.
	CambiarEstado(ctx context.Context, tx *gorm.DB, id uuid.UUID, desde, hacia string, closedAt *time.Time) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// List returns cotizaciones of tallerID, or all when tallerID is nil.
	List(ctx context.Context, tallerID *uuid.UUID, filter dto.CotizacionFilter) ([]model.Cotizacion, int64, error)
	ListVisibles(ctx context.Context, c matching.Criterio, filter dto.CotizacionFilter) ([]model.Cotizacion, int64, error)
	// VistasDe returns which of ids proveedorID has already opened.
	VistasDe(ctx context.Context, proveedorID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	MarcarVista(ctx context.Context, v *model.CotizacionVista) error
	DB() *gorm.DB
}

type cotizacionRepo struct{ db *gorm.DB }

func NewCotizacionRepository(db *gorm.DB) CotizacionRepository { return &cotizacionRepo{db: db} }

func (r *cotizacionRepo) DB() *gorm.DB { return r.db }

func itemsOrdenados(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }

func (r *cotizacionRepo) Create(ctx context.Context, c *model.Cotizacion) error {
	return traducirError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *cotizacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cotizacion, error) {
	var c model.Cotizacion
	err := r.db.WithContext(ctx).
		Preload("Items", itemsOrdenados).
		Preload("Taller").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &c, nil
}

func (r *cotizacionRepo) FindByIDLocked(ctx context.Context, tx *gorm.DB, id uuid.UUID, modo Bloqueo) (*model.Cotizacion, error) {
	var c model.Cotizacion
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: string(modo)}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &c, nil
}

func (r *cotizacionRepo) ActualizarCabecera(ctx context.Context, c *model.Cotizacion) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Cotizacion{}).
		Where("id = ? AND estado = ?", c.ID, model.CotizacionAbierta).
		Updates(map[string]interface{}{
			"titulo":           c.Titulo,
			"vehiculo_marca":   c.VehiculoMarca,
			"vehiculo_modelo":  c.VehiculoModelo,
			"vehiculo_anio":    c.VehiculoAnio,
			"vehiculo_patente": c.VehiculoPatente,
			"descripcion":      c.Descripcion,
			"updated_at":       time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *cotizacionRepo) CambiarEstado(ctx context.Context, tx *gorm.DB, id uuid.UUID, desde, hacia string, closedAt *time.Time) (bool, error) {
	cambios := map[string]interface{}{"estado": hacia, "updated_at": time.Now()}
	if closedAt != nil {
		cambios["closed_at"] = *closedAt
	}
	res := conn(r.db, tx).WithContext(ctx).Model(&model.Cotizacion{}).
		Where("id = ? AND estado = ?", id, desde).
		Updates(cambios)
	return res.RowsAffected == 1, res.Error
}

func (r *cotizacionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	// cotizacion_items and cotizacion_vistas cascade at the FK level
	return conn(r.db, tx).WithContext(ctx).Delete(&model.Cotizacion{}, "id = ?", id).Error
}

func (r *cotizacionRepo) List(ctx context.Context, tallerID *uuid.UUID, filter dto.CotizacionFilter) ([]model.Cotizacion, int64, error) {
	var list []model.Cotizacion
	var total int64
	filter.Normalize()
	offset, limit := paginar(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.Cotizacion{})
	if tallerID != nil {
		q = q.Where("taller_id = ?", *tallerID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Categoria != "" {
		q = q.Where("lower(categoria) = lower(?)", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items", itemsOrdenados).Preload("Taller").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *cotizacionRepo) ListVisibles(ctx context.Context, c matching.Criterio, filter dto.CotizacionFilter) ([]model.Cotizacion, int64, error) {
	var list []model.Cotizacion
	var total int64
	if c.SinCobertura() {
		return list, 0, nil
	}
	filter.Normalize()
	offset, limit := paginar(filter.Page, filter.Limit)

	// Same rule as matching.Visible, expressed in SQL.
	q := r.db.WithContext(ctx).Model(&model.Cotizacion{}).
		Where("estado = ?", model.CotizacionAbierta).
		Where("taller_id IN (SELECT id FROM talleres WHERE lower(trim(region)) = ANY(?))", pq.StringArray(c.Regiones)).
		Where("NOT EXISTS (SELECT 1 FROM ofertas o WHERE o.cotizacion_id = cotizaciones.id AND o.proveedor_id = ?)", c.ProveedorID)
	if !c.TodasLasCategorias() {
		q = q.Where("lower(trim(categoria)) = ANY(?)", pq.StringArray(c.Categorias))
	}
	if filter.Categoria != "" {
		q = q.Where("lower(categoria) = lower(?)", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items", itemsOrdenados).Preload("Taller").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *cotizacionRepo) VistasDe(ctx context.Context, proveedorID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	vistas := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return vistas, nil
	}
	var rows []model.CotizacionVista
	err := r.db.WithContext(ctx).
		Where("proveedor_id = ? AND cotizacion_id IN ?", proveedorID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, v := range rows {
		vistas[v.CotizacionID] = true
	}
	return vistas, nil
}

func (r *cotizacionRepo) MarcarVista(ctx context.Context, v *model.CotizacionVista) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(v).Error
}
