package handler

import (
	"net/http"
	"strconv"

	"findautopart/internal/dto"
	"findautopart/internal/service"

	"github.com/gin-gonic/gin"
)

type OfertasHandler struct{ svc service.OfertaService }

func NewOfertasHandler(svc service.OfertaService) *OfertasHandler {
	return &OfertasHandler{svc: svc}
}

// Crear godoc
// @Summary      Ofertar sobre una cotización
// @Description  Una oferta por proveedor y cotización. La cotización debe estar abierta.
// @Tags         ofertas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                 true "UUID de la cotización"
// @Param        body body     dto.CrearOfertaRequest true "Oferta"
// @Success      201  {object} dto.OfertaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/cotizaciones/{id}/ofertas [post]
func (h *OfertasHandler) Crear(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.CrearOfertaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actor(c).ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarPorCotizacion GET /v1/cotizaciones/:id/ofertas
func (h *OfertasHandler) ListarPorCotizacion(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorCotizacion(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ranking godoc
// @Summary      Ranking de ofertas
// @Description  ofertas: cobertura desc, total asc, días asc. comparativa: sólo por total.
// @Tags         ofertas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la cotización"
// @Success      200  {object} dto.RankingResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/cotizaciones/{id}/ranking [get]
func (h *OfertasHandler) Ranking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Ranking(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarMias GET /v1/ofertas
func (h *OfertasHandler) ListarMias(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}

	data, total, err := h.svc.ListarMias(c.Request.Context(), actor(c).ID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "total": total, "page": page})
}

func (h *OfertasHandler) Obtener(c *gin.Context) {
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
