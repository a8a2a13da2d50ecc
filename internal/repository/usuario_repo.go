package repository

import (
	"context"

	"findautopart/internal/dto"
	"findautopart/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, tx *gorm.DB, u *model.Usuario) error
	FindByUsername(ctx context.Context, username string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	List(ctx context.Context, filter dto.UsuarioFilter) ([]model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) DB() *gorm.DB { return r.db }

func (r *usuarioRepo) Create(ctx context.Context, tx *gorm.DB, u *model.Usuario) error {
	return traducirError(conn(r.db, tx).WithContext(ctx).Create(u).Error)
}

func (r *usuarioRepo) FindByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	// Login accepts the username or the email (case-insensitive). Inactive
	// usuarios are invisible here so they cannot log in or refresh.
	err := r.db.WithContext(ctx).
		Where("(username = ? OR LOWER(email::text) = LOWER(?)) AND activo = true", username, username).
		First(&u).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &u, nil
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, traducirError(err)
	}
	return &u, nil
}

func (r *usuarioRepo) List(ctx context.Context, filter dto.UsuarioFilter) ([]model.Usuario, error) {
	q := r.db.WithContext(ctx).Model(&model.Usuario{})
	if filter.Rol != "" {
		q = q.Where("rol = ?", filter.Rol)
	}
	if !filter.IncluirInactivos {
		q = q.Where("activo = true")
	}
	var users []model.Usuario
	err := q.Order("username asc").Find(&users).Error
	return users, err
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	return traducirError(r.db.WithContext(ctx).Save(u).Error)
}

func (r *usuarioRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Usuario{}).Where("id = ?", id).Update("activo", false).Error
}
