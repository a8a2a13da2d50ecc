package service

import (
	"context"
	"time"

	"findautopart/internal/dto"
	"findautopart/internal/repository"
)

// ReporteService is the read-only admin summary.
type ReporteService interface {
	Resumen(ctx context.Context, filter dto.ReporteFilter) (*dto.ResumenResponse, error)
}

type reporteService struct {
	repo repository.ReporteRepository
}

func NewReporteService(repo repository.ReporteRepository) ReporteService {
	return &reporteService{repo: repo}
}

// rango parses desde/hasta (YYYY-MM-DD). hasta is inclusive.
func rango(filter dto.ReporteFilter) (repository.Rango, error) {
	var rg repository.Rango
	if filter.Desde != "" {
		d, err := time.Parse("2006-01-02", filter.Desde)
		if err != nil {
			return rg, validacion("fecha desde inválida")
		}
		rg.Desde = d
	}
	if filter.Hasta != "" {
		h, err := time.Parse("2006-01-02", filter.Hasta)
		if err != nil {
			return rg, validacion("fecha hasta inválida")
		}
		rg.Hasta = h.AddDate(0, 0, 1)
	}
	if !rg.Desde.IsZero() && !rg.Hasta.IsZero() && !rg.Desde.Before(rg.Hasta) {
		return rg, validacion("el rango de fechas es inválido")
	}
	return rg, nil
}

func (s *reporteService) Resumen(ctx context.Context, filter dto.ReporteFilter) (*dto.ResumenResponse, error) {
	rg, err := rango(filter)
	if err != nil {
		return nil, err
	}
	cots, err := s.repo.CotizacionesPorEstado(ctx, rg)
	if err != nil {
		return nil, err
	}
	peds, err := s.repo.PedidosPorEstado(ctx, rg)
	if err != nil {
		return nil, err
	}
	ofertas, err := s.repo.ContarOfertas(ctx, rg)
	if err != nil {
		return nil, err
	}
	monto, err := s.repo.MontoEntregado(ctx, rg)
	if err != nil {
		return nil, err
	}
	return &dto.ResumenResponse{
		CotizacionesPorEstado: cots,
		PedidosPorEstado:      peds,
		Ofertas:               ofertas,
		MontoEntregado:        monto,
	}, nil
}
