package service

import (
	"context"
	"errors"
	"strings"

	"findautopart/internal/dto"
	"findautopart/internal/model"
	"findautopart/internal/repository"

	"github.com/google/uuid"
)

// CategoriaService manages the parts category catalogue used for matching.
type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context, incluirInactivas bool) ([]dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
		CreatedAt:   c.CreatedAt,
	}
}

// nombreLibre fails with Conflict when another categoría already uses nombre.
func (s *categoriaService) nombreLibre(ctx context.Context, nombre string, propia uuid.UUID) error {
	existing, err := s.repo.ObtenerPorNombre(ctx, nombre)
	if err != nil && !errors.Is(err, repository.ErrNoEncontrado) {
		return err
	}
	if existing != nil && existing.ID != propia {
		return conflicto("ya existe una categoría con ese nombre")
	}
	return nil
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if err := s.nombreLibre(ctx, nombre, uuid.Nil); err != nil {
		return dto.CategoriaResponse{}, err
	}

	c := &model.Categoria{Nombre: nombre, Descripcion: req.Descripcion, Activo: true}
	if err := s.repo.Crear(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return dto.CategoriaResponse{}, conflicto("ya existe una categoría con ese nombre")
		}
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context, incluirInactivas bool) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.Listar(ctx, !incluirInactivas)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.CategoriaResponse{}, siNoExiste(err, "categoría no encontrada")
	}

	if req.Nombre != nil && *req.Nombre != c.Nombre {
		if err := s.nombreLibre(ctx, *req.Nombre, id); err != nil {
			return dto.CategoriaResponse{}, err
		}
		c.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		c.Descripcion = req.Descripcion
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}

	if err := s.repo.Actualizar(ctx, c); err != nil {
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

// Desactivar hides the categoría from new cotizaciones. Existing cotizaciones
// keep their tag and stay matchable.
func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return siNoExiste(err, "categoría no encontrada")
	}
	return s.repo.Desactivar(ctx, id)
}
