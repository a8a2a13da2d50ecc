package middleware

import (
	"net/http"
	"time"

	"findautopart/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler logs errors attached with c.Error and, when the handler wrote
// nothing, answers with a generic 500. Internal details never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err.Err).
			Msg("unhandled error")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		}
	}
}

// Recovery handles panics and converts them into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("path", c.Request.URL.Path).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
			}
		}()
		c.Next()
	}
}

// Logger logs each request with method, path, status, latency, request_id and,
// once authenticated, the caller. 5xx log at error level, 4xx at warn.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev = ev.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start))
		if v, ok := c.Get(ClaimsKey); ok {
			if cl, ok := v.(*JWTClaims); ok {
				ev = ev.Str("user_id", cl.UserID).Str("rol", cl.Rol)
			}
		}
		ev.Msg("request")
	}
}
