package service

import (
	"context"
	"time"

	"findautopart/internal/dto"
	"findautopart/internal/matching"
	"findautopart/internal/model"
	"findautopart/internal/repository"

	"github.com/google/uuid"
)

// MatchingService exposes the open cotizaciones each proveedor may quote.
type MatchingService interface {
	ListarVisibles(ctx context.Context, proveedorID uuid.UUID, filter dto.CotizacionFilter) (*dto.CotizacionListResponse, error)
	// MarcarVista records the first time proveedorID opened the cotización. Idempotent.
	MarcarVista(ctx context.Context, cotizacionID, proveedorID uuid.UUID) error
}

type matchingService struct {
	cotizaciones repository.CotizacionRepository
	proveedores  repository.ProveedorRepository
	firmador     FirmadorURL
	now          func() time.Time
}

func NewMatchingService(cotizaciones repository.CotizacionRepository, proveedores repository.ProveedorRepository, firmador FirmadorURL) MatchingService {
	return &matchingService{cotizaciones: cotizaciones, proveedores: proveedores, firmador: firmador, now: time.Now}
}

func (s *matchingService) ListarVisibles(ctx context.Context, proveedorID uuid.UUID, filter dto.CotizacionFilter) (*dto.CotizacionListResponse, error) {
	filter.Normalize()
	resp := &dto.CotizacionListResponse{Data: []dto.CotizacionResponse{}, Page: filter.Page, Limit: filter.Limit}

	p, err := s.proveedores.FindByID(ctx, proveedorID)
	if err != nil {
		return nil, siNoExiste(err, "proveedor no encontrado")
	}
	if !p.Activo {
		return resp, nil
	}

	list, total, err := s.cotizaciones.ListVisibles(ctx, matching.NuevoCriterio(p), filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	vistas, err := s.cotizaciones.VistasDe(ctx, proveedorID, ids)
	if err != nil {
		return nil, err
	}

	for i := range list {
		r := mapCotizacion(ctx, s.firmador, &list[i])
		vista := vistas[list[i].ID]
		r.Vista = &vista
		resp.Data = append(resp.Data, r)
	}
	resp.Total = total
	resp.TotalPages = dto.TotalPages(total, filter.Limit)
	return resp, nil
}

func (s *matchingService) MarcarVista(ctx context.Context, cotizacionID, proveedorID uuid.UUID) error {
	if _, err := s.cotizaciones.FindByID(ctx, cotizacionID); err != nil {
		return siNoExiste(err, "cotización no encontrada")
	}
	return s.cotizaciones.MarcarVista(ctx, &model.CotizacionVista{
		CotizacionID: cotizacionID,
		ProveedorID:  proveedorID,
		VistaAt:      s.now(),
	})
}
