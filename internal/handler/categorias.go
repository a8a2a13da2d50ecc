package handler

import (
	"net/http"

	"findautopart/internal/dto"
	"findautopart/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoriasHandler struct{ svc service.CategoriaService }

func NewCategoriasHandler(svc service.CategoriaService) *CategoriasHandler {
	return &CategoriasHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear categoría
// @Tags         categorias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearCategoriaRequest true "Categoría"
// @Success      201  {object} dto.CategoriaResponse
// @Failure      400  {object} apierror.APIError "Nombre duplicado"
// @Router       /v1/categorias [post]
func (h *CategoriasHandler) Crear(c *gin.Context) {
	var req dto.CrearCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar categorías
// @Description  Activas por defecto. Sólo administradores pueden pedir incluir_inactivas.
// @Tags         categorias
// @Produce      json
// @Security     BearerAuth
// @Param        incluir_inactivas query bool false "Incluir desactivadas (admin)"
// @Success      200  {array} dto.CategoriaResponse
// @Router       /v1/categorias [get]
func (h *CategoriasHandler) Listar(c *gin.Context) {
	var filter dto.CategoriaFilter
	if !bindQuery(c, &filter) {
		return
	}
	incluir := filter.IncluirInactivas && actor(c).EsAdmin()
	resp, err := h.svc.Listar(c.Request.Context(), incluir)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar PUT /v1/categorias/:id
func (h *CategoriasHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar DELETE /v1/categorias/:id. Soft delete: existing cotizaciones
// keep the name.
func (h *CategoriasHandler) Desactivar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
