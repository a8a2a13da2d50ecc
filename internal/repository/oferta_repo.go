package repository

import (
	"context"

	"findautopart/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OfertaRepository interface {
	// Create inserts the oferta and its items. A second oferta from the same
	// proveedor on the same cotización fails with ErrDuplicado.
	Create(ctx context.Context, tx *gorm.DB, o *model.Oferta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Oferta, error)
	ExistePorProveedor(ctx context.Context, tx *gorm.DB, cotizacionID, proveedorID uuid.UUID) (bool, error)
	// ListByCotizacion returns ofertas by created_at, id ascending.
	ListByCotizacion(ctx context.Context, cotizacionID uuid.UUID) ([]model.Oferta, error)
	ListByProveedor(ctx context.Context, proveedorID uuid.UUID, page, limit int) ([]model.Oferta, int64, error)
	CountByCotizacion(ctx context.Context, tx *gorm.DB, cotizacionID uuid.UUID) (int64, error)
	CountByCotizaciones(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
}

type ofertaRepo struct{ db *gorm.DB }

func NewOfertaRepository(db *gorm.DB) OfertaRepository { return &ofertaRepo{db: db} }

func (r *ofertaRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Oferta) error {
	return traducirError(conn(r.db, tx).WithContext(ctx).Create(o).Error)
}

func (r *ofertaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Oferta, error) {
	var o model.Oferta
	err := r.db.WithContext(ctx).
		Preload("Items", itemsOrdenados).
		Preload("Proveedor").
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &o, nil
}

func (r *ofertaRepo) ExistePorProveedor(ctx context.Context, tx *gorm.DB, cotizacionID, proveedorID uuid.UUID) (bool, error) {
	var n int64
	err := conn(r.db, tx).WithContext(ctx).Model(&model.Oferta{}).
		Where("cotizacion_id = ? AND proveedor_id = ?", cotizacionID, proveedorID).
		Count(&n).Error
	return n > 0, err
}

func (r *ofertaRepo) ListByCotizacion(ctx context.Context, cotizacionID uuid.UUID) ([]model.Oferta, error) {
	var list []model.Oferta
	err := r.db.WithContext(ctx).
		Preload("Items", itemsOrdenados).
		Preload("Proveedor").
		Where("cotizacion_id = ?", cotizacionID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *ofertaRepo) ListByProveedor(ctx context.Context, proveedorID uuid.UUID, page, limit int) ([]model.Oferta, int64, error) {
	var list []model.Oferta
	var total int64
	offset, size := paginar(page, limit)

	q := r.db.WithContext(ctx).Model(&model.Oferta{}).Where("proveedor_id = ?", proveedorID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items", itemsOrdenados).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(size).
		Find(&list).Error
	return list, total, err
}

func (r *ofertaRepo) CountByCotizacion(ctx context.Context, tx *gorm.DB, cotizacionID uuid.UUID) (int64, error) {
	var n int64
	err := conn(r.db, tx).WithContext(ctx).Model(&model.Oferta{}).
		Where("cotizacion_id = ?", cotizacionID).
		Count(&n).Error
	return n, err
}

func (r *ofertaRepo) CountByCotizaciones(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		CotizacionID uuid.UUID
		N            int64
	}
	err := r.db.WithContext(ctx).Model(&model.Oferta{}).
		Select("cotizacion_id, count(*) AS n").
		Where("cotizacion_id IN ?", ids).
		Group("cotizacion_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CotizacionID] = row.N
	}
	return out, nil
}
