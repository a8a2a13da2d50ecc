package service

import (
	"context"
	"strings"

	"findautopart/internal/dto"
	"findautopart/internal/model"
	"findautopart/internal/repository"

	"github.com/google/uuid"
)

type TallerService interface {
	ObtenerPerfil(ctx context.Context, id uuid.UUID) (*dto.TallerResponse, error)
	ActualizarPerfil(ctx context.Context, id uuid.UUID, req dto.ActualizarTallerRequest) (*dto.TallerResponse, error)
}

type tallerService struct {
	repo repository.TallerRepository
}

func NewTallerService(repo repository.TallerRepository) TallerService {
	return &tallerService{repo: repo}
}

func mapTaller(t *model.Taller) dto.TallerResponse {
	return dto.TallerResponse{
		ID:        t.ID,
		Nombre:    t.Nombre,
		Region:    t.Region,
		Direccion: t.Direccion,
		Telefono:  t.Telefono,
	}
}

func (s *tallerService) ObtenerPerfil(ctx context.Context, id uuid.UUID) (*dto.TallerResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "perfil de taller no encontrado")
	}
	resp := mapTaller(t)
	return &resp, nil
}

// ActualizarPerfil changes the taller profile. A new region applies to
// matching immediately, including for cotizaciones already abiertas.
func (s *tallerService) ActualizarPerfil(ctx context.Context, id uuid.UUID, req dto.ActualizarTallerRequest) (*dto.TallerResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "perfil de taller no encontrado")
	}
	if req.Nombre != nil {
		t.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Region != nil {
		r := strings.TrimSpace(*req.Region)
		if r == "" {
			return nil, validacion("la región es obligatoria")
		}
		t.Region = r
	}
	if req.Direccion != nil {
		t.Direccion = req.Direccion
	}
	if req.Telefono != nil {
		t.Telefono = req.Telefono
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	resp := mapTaller(t)
	return &resp, nil
}
