package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"findautopart/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ──────────────────────────────────────────────────────

type ventana struct {
	count int
	end   time.Time
}

// limiter counts requests per client IP in fixed windows.
type limiter struct {
	name   string
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*ventana
}

func newLimiter(name string, limit int, window time.Duration) *limiter {
	l := &limiter{name: name, limit: limit, window: window, clients: make(map[string]*ventana)}
	go l.purgar(purgeInterval)
	return l
}

// permitir registers one request from ip and reports whether it is within the
// limit, plus the seconds until the window resets.
func (l *limiter) permitir(ip string, now time.Time) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.clients[ip]
	if !ok || now.After(v.end) {
		v = &ventana{end: now.Add(l.window)}
		l.clients[ip] = v
	}
	v.count++
	return v.count <= l.limit, int(v.end.Sub(now).Seconds()) + 1
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Expired entries are dropped so IPs that never return do not accumulate.

const purgeInterval = 5 * time.Minute

func (l *limiter) purgar(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for now := range ticker.C {
		l.mu.Lock()
		purged := 0
		for ip, v := range l.clients {
			if now.After(v.end) {
				delete(l.clients, ip)
				purged++
			}
		}
		remaining := len(l.clients)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Str("limiter", l.name).
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter purged")
		}
	}
}

func (l *limiter) handler(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retry := l.permitir(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter("login", 20, time.Minute).
		handler("Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter is the general API limiter: limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter("api", limit, window).
		handler("Demasiadas solicitudes. Intente nuevamente en un momento.")
}
