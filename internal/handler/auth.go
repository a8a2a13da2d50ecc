package handler

import (
	"net/http"

	"findautopart/internal/dto"
	"findautopart/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login de usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.AuthService }

func NewUsuariosHandler(svc service.AuthService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear usuario
// @Description  Para talleres y proveedores crea también el perfil.
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearUsuarioRequest true "Usuario"
// @Success      201  {object} dto.UsuarioResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/usuarios [post]
func (h *UsuariosHandler) Crear(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearUsuario(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UsuariosHandler) Listar(c *gin.Context) {
	var filter dto.UsuarioFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarUsuarios(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarUsuario(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Desactivar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.DesactivarUsuario(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
