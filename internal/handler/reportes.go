package handler

import (
	"net/http"

	"findautopart/internal/dto"
	"findautopart/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Resumen godoc
// @Summary      Resumen del marketplace
// @Description  Conteos por estado y monto entregado en el rango [desde, hasta].
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        desde query string false "YYYY-MM-DD"
// @Param        hasta query string false "YYYY-MM-DD"
// @Success      200  {object} dto.ResumenResponse
// @Router       /v1/reportes/resumen [get]
func (h *ReportesHandler) Resumen(c *gin.Context) {
	var filter dto.ReporteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
