package handler

import (
	"context"
	"net/http"
	"time"

	"findautopart/internal/infra"
	"findautopart/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// The notification breaker states and DLQ depth are informative and
// do not affect the status code.
func Health(db *gorm.DB, rdb *redis.Client, cbs worker.Breakers) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlq int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			dlq, _ = worker.DLQLength(ctx, rdb, worker.QueueNotificaciones)
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"dlq":   dlq,
		}
		notif := gin.H{}
		for canal, cb := range map[string]*infra.CircuitBreaker{"sns": cbs.SNS, "email": cbs.Email} {
			if cb != nil {
				notif[canal] = cb.State().String()
			}
		}
		if len(notif) > 0 {
			body["notificaciones"] = notif
		}
		c.JSON(status, body)
	}
}
