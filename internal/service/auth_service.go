package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"findautopart/internal/config"
	"findautopart/internal/dto"
	"findautopart/internal/model"
	"findautopart/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, filter dto.UsuarioFilter) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo        repository.UsuarioRepository
	talleres    repository.TallerRepository
	proveedores repository.ProveedorRepository
	categorias  repository.CategoriaRepository
	cfg         *config.Config
	bcryptCost  int
}

func NewAuthService(
	repo repository.UsuarioRepository,
	talleres repository.TallerRepository,
	proveedores repository.ProveedorRepository,
	categorias repository.CategoriaRepository,
	cfg *config.Config,
) AuthService {
	return &authService{
		repo:        repo,
		talleres:    talleres,
		proveedores: proveedores,
		categorias:  categorias,
		cfg:         cfg,
		bcryptCost:  12,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, noAutenticado("credenciales invalidas")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, noAutenticado("credenciales invalidas")
	}
	return s.emitirTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, noAutenticado("refresh token invalido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, noAutenticado("claims invalidos")
	}
	if claims["typ"] != model.TokenRefresh {
		return nil, noAutenticado("se requiere un refresh token")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, noAutenticado("token mal formado")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, noAutenticado("token mal formado")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, noAutenticado("usuario no encontrado o inactivo")
	}
	return s.emitirTokens(user)
}

func (s *authService) emitirTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, model.TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, model.TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         mapUsuario(user),
	}, nil
}

// CrearUsuario creates the usuario and, for talleres and proveedores, its
// profile row in the same transaction.
func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	var cats []string
	if req.Rol == model.RolProveedor {
		validas, err := validarCategorias(ctx, s.categorias, req.Categorias)
		if err != nil {
			return nil, err
		}
		cats = validas
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(req.Username),
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, user); err != nil {
			return err
		}
		switch req.Rol {
		case model.RolTaller:
			return s.talleres.Create(ctx, tx, &model.Taller{
				ID:        user.ID,
				Nombre:    req.Nombre,
				Region:    strings.TrimSpace(req.Region),
				Direccion: req.Direccion,
				Telefono:  req.Telefono,
			})
		case model.RolProveedor:
			return s.proveedores.Create(ctx, tx, &model.Proveedor{
				ID:          user.ID,
				RazonSocial: strings.TrimSpace(req.RazonSocial),
				CUIT:        req.CUIT,
				Telefono:    req.Telefono,
				Email:       req.Email,
				Categorias:  cats,
				Regiones:    limpiarLista(req.Regiones),
				Activo:      true,
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, conflicto("el usuario %s ya existe", user.Username)
		}
		return nil, err
	}

	resp := mapUsuario(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, filter dto.UsuarioFilter) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, 0, len(users))
	for i := range users {
		resp = append(resp, mapUsuario(&users[i]))
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "usuario no encontrado")
	}
	if req.Nombre != "" {
		user.Nombre = req.Nombre
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Activo != nil {
		user.Activo = *req.Activo
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, conflicto("el email ya está en uso")
		}
		return nil, err
	}
	resp := mapUsuario(user)
	return &resp, nil
}

// DesactivarUsuario blocks login. A deactivated proveedor also stops matching.
func (s *authService) DesactivarUsuario(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return siNoExiste(err, "usuario no encontrado")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	if user.Rol == model.RolProveedor {
		return s.proveedores.SoftDelete(ctx, id)
	}
	return nil
}

func (s *authService) generateToken(user *model.Usuario, tipo string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"typ":      tipo,
		"user_id":  user.ID.String(),
		"username": user.Username,
		"rol":      user.Rol,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
