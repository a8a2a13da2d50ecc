package repository

import (
	"context"
	"time"

	"findautopart/internal/dto"
	"findautopart/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PedidoScope restricts List to one party; both nil lists everything.
type PedidoScope struct {
	TallerID    *uuid.UUID
	ProveedorID *uuid.UUID
}

type PedidoRepository interface {
	// Create fails with ErrDuplicado when the cotización already has a pedido.
	Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	ExisteParaCotizacion(ctx context.Context, tx *gorm.DB, cotizacionID uuid.UUID) (bool, error)
	// ActualizarEstado applies cambios only if the pedido is still in desde.
	ActualizarEstado(ctx context.Context, id uuid.UUID, desde string, cambios map[string]interface{}) (bool, error)
	List(ctx context.Context, scope PedidoScope, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	// ListConCotizacionAbierta finds pedidos whose cotización was never closed.
	ListConCotizacionAbierta(ctx context.Context, limit int) ([]model.Pedido, error)
	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return traducirError(conn(r.db, tx).WithContext(ctx).Create(p).Error)
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, traducirError(err)
	}
	return &p, nil
}

func (r *pedidoRepo) ExisteParaCotizacion(ctx context.Context, tx *gorm.DB, cotizacionID uuid.UUID) (bool, error) {
	var n int64
	err := conn(r.db, tx).WithContext(ctx).Model(&model.Pedido{}).
		Where("cotizacion_id = ?", cotizacionID).
		Count(&n).Error
	return n > 0, err
}

func (r *pedidoRepo) ActualizarEstado(ctx context.Context, id uuid.UUID, desde string, cambios map[string]interface{}) (bool, error) {
	if _, ok := cambios["updated_at"]; !ok {
		cambios["updated_at"] = time.Now()
	}
	res := r.db.WithContext(ctx).Model(&model.Pedido{}).
		Where("id = ? AND estado = ?", id, desde).
		Updates(cambios)
	return res.RowsAffected == 1, res.Error
}

func (r *pedidoRepo) List(ctx context.Context, scope PedidoScope, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var list []model.Pedido
	var total int64
	filter.Normalize()
	offset, limit := paginar(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if scope.TallerID != nil {
		q = q.Where("taller_id = ?", *scope.TallerID)
	}
	if scope.ProveedorID != nil {
		q = q.Where("proveedor_id = ?", *scope.ProveedorID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *pedidoRepo) ListConCotizacionAbierta(ctx context.Context, limit int) ([]model.Pedido, error) {
	var list []model.Pedido
	err := r.db.WithContext(ctx).
		Where("cotizacion_id IN (SELECT id FROM cotizaciones WHERE estado = ?)", model.CotizacionAbierta).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
