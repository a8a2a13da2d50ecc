package service

import (
	"context"
	"strings"

	"findautopart/internal/dto"
	"findautopart/internal/matching"
	"findautopart/internal/model"
	"findautopart/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProveedorService manages the supplier profile that drives matching.
type ProveedorService interface {
	ObtenerPerfil(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	ActualizarPerfil(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
}

type proveedorService struct {
	repo       repository.ProveedorRepository
	categorias repository.CategoriaRepository
}

func NewProveedorService(repo repository.ProveedorRepository, categorias repository.CategoriaRepository) ProveedorService {
	return &proveedorService{repo: repo, categorias: categorias}
}

func mapProveedor(p *model.Proveedor) dto.ProveedorResponse {
	cats := []string(p.Categorias)
	if cats == nil {
		cats = []string{}
	}
	regs := []string(p.Regiones)
	if regs == nil {
		regs = []string{}
	}
	return dto.ProveedorResponse{
		ID:          p.ID,
		RazonSocial: p.RazonSocial,
		CUIT:        p.CUIT,
		Telefono:    p.Telefono,
		Email:       p.Email,
		Categorias:  cats,
		Regiones:    regs,
		Activo:      p.Activo,
	}
}

func (s *proveedorService) ObtenerPerfil(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "proveedor no encontrado")
	}
	resp := mapProveedor(p)
	return &resp, nil
}

func (s *proveedorService) ActualizarPerfil(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "proveedor no encontrado")
	}

	if req.RazonSocial != nil {
		p.RazonSocial = strings.TrimSpace(*req.RazonSocial)
	}
	if req.CUIT != nil {
		p.CUIT = req.CUIT
	}
	if req.Telefono != nil {
		p.Telefono = req.Telefono
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Categorias != nil {
		cats, err := validarCategorias(ctx, s.categorias, req.Categorias)
		if err != nil {
			return nil, err
		}
		p.Categorias = cats
	}
	if req.Regiones != nil {
		p.Regiones = limpiarLista(req.Regiones)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := mapProveedor(p)
	return &resp, nil
}

// validarCategorias requires every name to be an active catalogue entry and
// returns the catalogue spelling.
func validarCategorias(ctx context.Context, repo repository.CategoriaRepository, nombres []string) (pq.StringArray, error) {
	nombres = limpiarLista(nombres)
	if len(nombres) == 0 {
		return pq.StringArray{}, nil
	}
	activas, err := repo.ActivasPorNombre(ctx, nombres)
	if err != nil {
		return nil, err
	}
	canon := make(map[string]string, len(activas))
	for _, c := range activas {
		canon[matching.Normalizar(c.Nombre)] = c.Nombre
	}
	out := make(pq.StringArray, 0, len(nombres))
	for _, n := range nombres {
		c, ok := canon[matching.Normalizar(n)]
		if !ok {
			return nil, validacion("categoría inválida: %s", n)
		}
		out = append(out, c)
	}
	return out, nil
}

// limpiarLista trims entries and drops empties and case-insensitive duplicates.
func limpiarLista(in []string) pq.StringArray {
	seen := make(map[string]bool, len(in))
	out := make(pq.StringArray, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		k := matching.Normalizar(s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
