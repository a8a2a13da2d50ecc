package handler

import (
	"net/http"

	"findautopart/internal/dto"
	"findautopart/internal/service"

	"github.com/gin-gonic/gin"
)

type CotizacionesHandler struct {
	svc      service.CotizacionService
	matching service.MatchingService
}

func NewCotizacionesHandler(svc service.CotizacionService, matching service.MatchingService) *CotizacionesHandler {
	return &CotizacionesHandler{svc: svc, matching: matching}
}

// Crear godoc
// @Summary      Publicar una cotización
// @Description  Crea la cotización abierta y avisa a los proveedores.
// @Tags         cotizaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearCotizacionRequest true "Cotización"
// @Success      201  {object} dto.CotizacionResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/cotizaciones [post]
func (h *CotizacionesHandler) Crear(c *gin.Context) {
	var req dto.CrearCotizacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actor(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar cotizaciones
// @Description  Talleres ven las propias; administradores, todas.
// @Tags         cotizaciones
// @Produce      json
// @Security     BearerAuth
// @Param        estado    query string false "abierta | cerrada | cancelada"
// @Param        categoria query string false "Categoría"
// @Param        page      query int    false "Página"
// @Param        limit     query int    false "Tamaño de página"
// @Success      200  {object} dto.CotizacionListResponse
// @Router       /v1/cotizaciones [get]
func (h *CotizacionesHandler) Listar(c *gin.Context) {
	var filter dto.CotizacionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), actor(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Visibles godoc
// @Summary      Cotizaciones visibles para el proveedor
// @Description  Abiertas, de su región y categorías, sin oferta propia. Más recientes primero.
// @Tags         cotizaciones
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.CotizacionListResponse
// @Router       /v1/cotizaciones/visibles [get]
func (h *CotizacionesHandler) Visibles(c *gin.Context) {
	var filter dto.CotizacionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.matching.ListarVisibles(c.Request.Context(), actor(c).ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CotizacionesHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarcarVista POST /v1/cotizaciones/:id/vista
func (h *CotizacionesHandler) MarcarVista(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.matching.MarcarVista(c.Request.Context(), id, actor(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CotizacionesHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarCotizacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), actor(c).ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary      Cerrar cotización
// @Tags         cotizaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la cotización"
// @Success      200  {object} dto.CotizacionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/cotizaciones/{id}/cerrar [post]
func (h *CotizacionesHandler) Cerrar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), actor(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary      Cancelar cotización
// @Description  Sólo abierta y sin pedido.
// @Tags         cotizaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la cotización"
// @Success      200  {object} dto.CotizacionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/cotizaciones/{id}/cancelar [post]
func (h *CotizacionesHandler) Cancelar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), actor(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar cotización
// @Description  Falla con 400 si ya recibió ofertas.
// @Tags         cotizaciones
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la cotización"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Router       /v1/cotizaciones/{id} [delete]
func (h *CotizacionesHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), actor(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
