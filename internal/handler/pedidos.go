package handler

import (
	"fmt"
	"net/http"

	"findautopart/internal/dto"
	"findautopart/internal/service"

	"github.com/gin-gonic/gin"
)

type PedidosHandler struct{ svc service.PedidoService }

func NewPedidosHandler(svc service.PedidoService) *PedidosHandler {
	return &PedidosHandler{svc: svc}
}

// Crear godoc
// @Summary      Aceptar una oferta
// @Description  Crea el pedido en pendiente y cierra la cotización en la misma transacción.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPedidoRequest true "Oferta aceptada y entrega"
// @Success      201  {object} dto.PedidoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/pedidos [post]
func (h *PedidosHandler) Crear(c *gin.Context) {
	var req dto.CrearPedidoRequest
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

func (h *PedidosHandler) Listar(c *gin.Context) {
	var filter dto.PedidoFilter
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

func (h *PedidosHandler) Obtener(c *gin.Context) {
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

// CambiarEstado godoc
// @Summary      Cambiar estado del pedido
// @Description  Proveedor: pendiente → confirmado. Taller: confirmado → entregado. cancelado delega en Cancelar.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                         true "UUID del pedido"
// @Param        body body     dto.CambiarEstadoPedidoRequest true "Nuevo estado"
// @Success      200  {object} dto.PedidoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/pedidos/{id}/estado [patch]
func (h *PedidosHandler) CambiarEstado(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.CambiarEstadoPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), actor(c), id, req.Estado, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar POST /v1/pedidos/:id/cancelar. The body is optional.
func (h *PedidosHandler) Cancelar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.CancelarPedidoRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), actor(c), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF GET /v1/pedidos/:id/pdf
func (h *PedidosHandler) PDF(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	pdf, err := h.svc.GenerarPDF(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="pedido-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
