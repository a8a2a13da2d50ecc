package repository

import (
	"context"
	"time"

	"findautopart/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rango is an optional created_at window; zero values are open ends.
type Rango struct {
	Desde time.Time
	Hasta time.Time
}

func (rg Rango) aplicar(q *gorm.DB) *gorm.DB {
	if !rg.Desde.IsZero() {
		q = q.Where("created_at >= ?", rg.Desde)
	}
	if !rg.Hasta.IsZero() {
		q = q.Where("created_at < ?", rg.Hasta)
	}
	return q
}

// ReporteRepository holds the read-only aggregate queries of the admin summary.
type ReporteRepository interface {
	CotizacionesPorEstado(ctx context.Context, rg Rango) (map[string]int64, error)
	PedidosPorEstado(ctx context.Context, rg Rango) (map[string]int64, error)
	ContarOfertas(ctx context.Context, rg Rango) (int64, error)
	MontoEntregado(ctx context.Context, rg Rango) (decimal.Decimal, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

type conteoEstado struct {
	Estado string
	N      int64
}

func (r *reporteRepo) porEstado(ctx context.Context, m interface{}, rg Rango) (map[string]int64, error) {
	var rows []conteoEstado
	q := rg.aplicar(r.db.WithContext(ctx).Model(m))
	if err := q.Select("estado, count(*) AS n").Group("estado").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Estado] = row.N
	}
	return out, nil
}

func (r *reporteRepo) CotizacionesPorEstado(ctx context.Context, rg Rango) (map[string]int64, error) {
	return r.porEstado(ctx, &model.Cotizacion{}, rg)
}

func (r *reporteRepo) PedidosPorEstado(ctx context.Context, rg Rango) (map[string]int64, error) {
	return r.porEstado(ctx, &model.Pedido{}, rg)
}

func (r *reporteRepo) ContarOfertas(ctx context.Context, rg Rango) (int64, error) {
	var n int64
	err := rg.aplicar(r.db.WithContext(ctx).Model(&model.Oferta{})).Count(&n).Error
	return n, err
}

func (r *reporteRepo) MontoEntregado(ctx context.Context, rg Rango) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := rg.aplicar(r.db.WithContext(ctx).Model(&model.Pedido{})).
		Where("estado = ?", model.PedidoEntregado).
		Select("SUM(total)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
