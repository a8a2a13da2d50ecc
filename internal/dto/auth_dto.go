package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CrearUsuarioRequest creates a usuario; for taller and proveedor roles the
// profile fields below create the matching profile in the same transaction.
type CrearUsuarioRequest struct {
	Username string  `json:"username"  validate:"required,min=1,max=150"`
	Nombre   string  `json:"nombre"    validate:"required,min=2,max=100"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	Password string  `json:"password"  validate:"required,min=8"`
	Rol      string  `json:"rol"       validate:"required,oneof=taller proveedor administrador"`

	// taller
	Region    string  `json:"region"     validate:"required_if=Rol taller"`
	Direccion *string `json:"direccion"`
	Telefono  *string `json:"telefono"`

	// proveedor
	RazonSocial string   `json:"razon_social" validate:"required_if=Rol proveedor"`
	CUIT        *string  `json:"cuit"`
	Categorias  []string `json:"categorias"`
	Regiones    []string `json:"regiones"`
}

type ActualizarUsuarioRequest struct {
	Nombre   string  `json:"nombre"   validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password string  `json:"password" validate:"omitempty,min=8"`
	Activo   *bool   `json:"activo"`
}

// UsuarioFilter is bound from the query string of GET /v1/usuarios.
type UsuarioFilter struct {
	Rol              string `form:"rol"               validate:"omitempty,oneof=taller proveedor administrador"`
	IncluirInactivos bool   `form:"incluir_inactivos"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Nombre   string  `json:"nombre"`
	Email    *string `json:"email"`
	Rol      string  `json:"rol"`
	Activo   bool    `json:"activo"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}
