package repository

import (
	"context"

	"findautopart/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TallerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *model.Taller) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Taller, error)
	Update(ctx context.Context, t *model.Taller) error
}

type tallerRepo struct{ db *gorm.DB }

func NewTallerRepository(db *gorm.DB) TallerRepository { return &tallerRepo{db: db} }

func (r *tallerRepo) Create(ctx context.Context, tx *gorm.DB, t *model.Taller) error {
	return traducirError(conn(r.db, tx).WithContext(ctx).Create(t).Error)
}

func (r *tallerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Taller, error) {
	var t model.Taller
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, traducirError(err)
	}
	return &t, nil
}

func (r *tallerRepo) Update(ctx context.Context, t *model.Taller) error {
	return r.db.WithContext(ctx).Save(t).Error
}
