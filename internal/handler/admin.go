package handler

import (
	"net/http"
	"strconv"

	"findautopart/internal/apierror"
	"findautopart/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxReplay = 1000

type AdminHandler struct{ rdb *redis.Client }

func NewAdminHandler(rdb *redis.Client) *AdminHandler {
	return &AdminHandler{rdb: rdb}
}

// ReplayNotificaciones godoc
// @Summary      Reencolar notificaciones fallidas
// @Description  Mueve hasta max entradas de la DLQ de notificaciones a su cola original.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        max query int false "Máximo de entradas (default 100)"
// @Success      200  {object} map[string]int
// @Router       /v1/admin/dlq/notificaciones/replay [post]
func (h *AdminHandler) ReplayNotificaciones(c *gin.Context) {
	max, err := strconv.Atoi(c.DefaultQuery("max", "100"))
	if err != nil || max < 1 || max > maxReplay {
		c.JSON(http.StatusBadRequest, apierror.Newf("max debe estar entre 1 y %d", maxReplay))
		return
	}
	moved, err := worker.ReplayDLQ(c.Request.Context(), h.rdb, worker.QueueNotificaciones, max)
	if err != nil {
		log.Error().Err(err).Int("movidas", moved).Msg("dlq: replay failed")
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		return
	}
	restantes, _ := worker.DLQLength(c.Request.Context(), h.rdb, worker.QueueNotificaciones)
	c.JSON(http.StatusOK, gin.H{"reencoladas": moved, "restantes": restantes})
}
