package infra

import (
	"errors"
	"strings"
	"testing"
	"time"

	"findautopart/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Circuit breaker ──────────────────────────────────────────────────────────

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "smtp", FailureThreshold: 2, OpenTimeout: time.Minute})
	now := time.Now()
	cb.now = func() time.Time { return now }
	falla := errors.New("relay caído")

	assert.ErrorIs(t, cb.Execute(func() error { return falla }), falla)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return falla }), falla)
	assert.Equal(t, CBOpen, cb.State())

	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "sns", FailureThreshold: 1, OpenTimeout: time.Minute})
	now := time.Now()
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errors.New("x") })
	require.Equal(t, CBOpen, cb.State())

	now = now.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	assert.Equal(t, "half-open", cb.State().String())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "sns", FailureThreshold: 3, OpenTimeout: time.Second})
	now := time.Now()
	cb.now = func() time.Time { return now }
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("x") })
	}
	now = now.Add(time.Second)
	require.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return errors.New("x") })
	assert.Equal(t, CBOpen, cb.State())
}

// ── Storage keys ─────────────────────────────────────────────────────────────

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	id := uuid.MustParse("6f1c1f0e-2b7a-4c55-9d8e-0f4a3b2c1d00")

	assert.Equal(t, "imagenes/2026/03/"+id.String()+"-disco-freno.jpg", ObjectKey(at, id, "Disco Freno.JPG"))
	assert.Equal(t, "imagenes/2026/03/"+id.String()+"-foto.png", ObjectKey(at, id, `C:\fotos\foto.png`))
	assert.Equal(t, "imagenes/2026/03/"+id.String()+"-passwd", ObjectKey(at, id, "../../etc/passwd"))
	assert.Equal(t, "imagenes/2026/03/"+id.String()+"-archivo", ObjectKey(at, id, "..."))

	largo := ObjectKey(at, id, strings.Repeat("a", 200)+".jpg")
	assert.True(t, strings.HasSuffix(largo, ".jpg"))
	assert.LessOrEqual(t, len(largo), len("imagenes/2026/03/")+36+1+80)
}

// ── Push channels ────────────────────────────────────────────────────────────

func TestCanal(t *testing.T) {
	assert.Equal(t, "notificaciones:broadcast", Canal("broadcast", ""))
	assert.Equal(t, "notificaciones:rol:proveedor", Canal("rol", "proveedor"))
}

// ── PDF ──────────────────────────────────────────────────────────────────────

func TestGeneratePedidoPDF(t *testing.T) {
	pdf, err := GeneratePedidoPDF(PedidoSlip{
		Pedido: &model.Pedido{
			ID:                   uuid.New(),
			Estado:               model.PedidoPendiente,
			Total:                decimal.NewFromInt(500),
			DireccionEntrega:     "Av. Colón 1234, Córdoba",
			FechaEntregaEstimada: time.Now().Add(48 * time.Hour),
			CreatedAt:            time.Now(),
		},
		Taller:    "Taller Ñandú",
		Proveedor: "Repuestos SA",
		Titulo:    "Frenos delanteros",
		Vehiculo:  "Ford Focus 2015",
		Items: []model.OfertaItem{
			{Nombre: "Pastillas", Cantidad: 2, PrecioUnitario: decimal.NewFromInt(250), Disponible: true},
			{Nombre: "Disco", Cantidad: 2, PrecioUnitario: decimal.NewFromInt(900), Disponible: false},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}
