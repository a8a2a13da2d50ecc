package repository

import (
	"context"
	"strings"

	"findautopart/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaRepository is the parts category catalogue.
type CategoriaRepository interface {
	Crear(ctx context.Context, c *model.Categoria) error
	Listar(ctx context.Context, soloActivas bool) ([]model.Categoria, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	ObtenerPorNombre(ctx context.Context, nombre string) (*model.Categoria, error)
	// ActivasPorNombre returns the active categories among nombres (case-insensitive).
	ActivasPorNombre(ctx context.Context, nombres []string) ([]model.Categoria, error)
	Actualizar(ctx context.Context, c *model.Categoria) error
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaRepository struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository {
	return &categoriaRepository{db: db}
}

func (r *categoriaRepository) Crear(ctx context.Context, c *model.Categoria) error {
	return traducirError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *categoriaRepository) Listar(ctx context.Context, soloActivas bool) ([]model.Categoria, error) {
	var list []model.Categoria
	q := r.db.WithContext(ctx)
	if soloActivas {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre asc").Find(&list).Error
	return list, err
}

func (r *categoriaRepository) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	var c model.Categoria
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, traducirError(err)
	}
	return &c, nil
}

func (r *categoriaRepository) ObtenerPorNombre(ctx context.Context, nombre string) (*model.Categoria, error) {
	var c model.Categoria
	if err := r.db.WithContext(ctx).Where("lower(nombre) = lower(?)", nombre).First(&c).Error; err != nil {
		return nil, traducirError(err)
	}
	return &c, nil
}

func (r *categoriaRepository) ActivasPorNombre(ctx context.Context, nombres []string) ([]model.Categoria, error) {
	var list []model.Categoria
	if len(nombres) == 0 {
		return list, nil
	}
	lower := make([]string, len(nombres))
	for i, n := range nombres {
		lower[i] = strings.ToLower(strings.TrimSpace(n))
	}
	err := r.db.WithContext(ctx).
		Where("activo = true AND lower(nombre) IN ?", lower).
		Find(&list).Error
	return list, err
}

func (r *categoriaRepository) Actualizar(ctx context.Context, c *model.Categoria) error {
	return traducirError(r.db.WithContext(ctx).Save(c).Error)
}

func (r *categoriaRepository) Desactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Categoria{}).Where("id = ?", id).Update("activo", false).Error
}
