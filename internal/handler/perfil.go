package handler

import (
	"net/http"

	"findautopart/internal/dto"
	"findautopart/internal/service"

	"github.com/gin-gonic/gin"
)

// PerfilHandler serves the caller's own taller or proveedor profile.
type PerfilHandler struct {
	talleres    service.TallerService
	proveedores service.ProveedorService
}

func NewPerfilHandler(talleres service.TallerService, proveedores service.ProveedorService) *PerfilHandler {
	return &PerfilHandler{talleres: talleres, proveedores: proveedores}
}

func (h *PerfilHandler) ObtenerTaller(c *gin.Context) {
	resp, err := h.talleres.ObtenerPerfil(c.Request.Context(), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarTaller godoc
// @Summary      Actualizar perfil del taller
// @Description  Un cambio de región afecta qué proveedores ven sus cotizaciones abiertas.
// @Tags         perfil
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ActualizarTallerRequest true "Campos a modificar"
// @Success      200  {object} dto.TallerResponse
// @Router       /v1/perfil/taller [put]
func (h *PerfilHandler) ActualizarTaller(c *gin.Context) {
	var req dto.ActualizarTallerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.talleres.ActualizarPerfil(c.Request.Context(), actor(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PerfilHandler) ObtenerProveedor(c *gin.Context) {
	resp, err := h.proveedores.ObtenerPerfil(c.Request.Context(), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarProveedor godoc
// @Summary      Actualizar perfil del proveedor
// @Description  Las categorías deben existir y estar activas.
// @Tags         perfil
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ActualizarProveedorRequest true "Campos a modificar"
// @Success      200  {object} dto.ProveedorResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/perfil/proveedor [put]
func (h *PerfilHandler) ActualizarProveedor(c *gin.Context) {
	var req dto.ActualizarProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.proveedores.ActualizarPerfil(c.Request.Context(), actor(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
