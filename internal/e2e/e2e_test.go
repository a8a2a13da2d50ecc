//go:build integration

package e2e

// e2e_test.go
// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/e2e/... -v
//
//   - full lifecycle: cotización → visible to the matching proveedor → oferta →
//     ranking → pedido → confirmado → entregado
//   - one oferta per proveedor, one pedido per cotización
//   - role partition of pedido transitions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"findautopart/internal/config"
	"findautopart/internal/infra"
	"findautopart/internal/router"
	"findautopart/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// expect asserts the status and decodes the body into dest when non-nil.
func expect(t *testing.T, resp *http.Response, status int, dest any) {
	t.Helper()
	if dest == nil {
		defer resp.Body.Close()
		require.Equal(t, status, resp.StatusCode)
		return
	}
	require.Equal(t, status, resp.StatusCode)
	decodeJSON(t, resp, dest)
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

const adminPassword = "admin-e2e-2026"

type testEnv struct {
	server *httptest.Server
	rdb    *redis.Client
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("findautopart_test"),
		tcPostgres.WithUsername("findautopart"),
		tcPostgres.WithPassword("findautopart"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
	}

	// NewDatabase runs the goose migrations, categorías seed included.
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO usuarios (username, nombre, password_hash, rol)
		VALUES ('admin', 'Admin E2E', ?, 'administrador')`, string(hash)).Error)

	r := router.New(cfg, db, rdb, nil, worker.Breakers{})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, rdb: rdb}
	env.token = env.login(t, "admin", adminPassword)
	return env
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": password}), "")
	var body struct {
		AccessToken string `json:"access_token"`
	}
	expect(t, resp, http.StatusOK, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

// crearUsuario creates a usuario through the admin API and logs in as it.
func (e *testEnv) crearUsuario(t *testing.T, req map[string]any) string {
	t.Helper()
	req["password"] = "password-e2e"
	req["nombre"] = req["username"]
	expect(t, do(t, e.server, "POST", "/v1/usuarios", jsonBody(t, req), e.token), http.StatusCreated, nil)
	return e.login(t, req["username"].(string), "password-e2e")
}

type idResp struct {
	ID     string `json:"id"`
	Estado string `json:"estado"`
}

type listResp struct {
	Data  []idResp `json:"data"`
	Total int64    `json:"total"`
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_Health(t *testing.T) {
	env := setupTestEnv(t)

	var body map[string]any
	expect(t, do(t, env.server, "GET", "/health", nil, ""), http.StatusOK, &body)
	assert.Equal(t, true, body["ok"])
}

func TestE2E_LoginWrongPassword(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "incorrecta"}), "")
	expect(t, resp, http.StatusUnauthorized, nil)
}

func TestE2E_FullLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server

	taller := env.crearUsuario(t, map[string]any{"username": "taller1", "rol": "taller", "region": "R1"})
	prov := env.crearUsuario(t, map[string]any{
		"username": "prov1", "rol": "proveedor", "razon_social": "Repuestos Uno",
		"regiones": []string{"R1"}, "categorias": []string{"frenos"},
	})
	otro := env.crearUsuario(t, map[string]any{
		"username": "prov2", "rol": "proveedor", "razon_social": "Repuestos Dos",
		"regiones": []string{"R2"}, "categorias": []string{"Frenos"},
	})

	// 1. Taller publishes a cotización
	var cot idResp
	expect(t, do(t, srv, "POST", "/v1/cotizaciones", jsonBody(t, map[string]any{
		"titulo":          "Frenos delanteros",
		"vehiculo_marca":  "Ford",
		"vehiculo_modelo": "Focus",
		"vehiculo_anio":   2015,
		"categoria":       "Frenos",
		"items":           []map[string]any{{"nombre": "Pastillas", "cantidad": 2}},
	}), taller), http.StatusCreated, &cot)
	assert.Equal(t, "abierta", cot.Estado)

	// Publishing enqueues the proveedor notification asynchronously
	assert.Eventually(t, func() bool {
		n, _ := env.rdb.LLen(context.Background(), worker.QueueNotificaciones).Result()
		return n > 0
	}, 5*time.Second, 50*time.Millisecond)

	// 2. Matching: visible to the R1 proveedor only
	var visibles listResp
	expect(t, do(t, srv, "GET", "/v1/cotizaciones/visibles", nil, prov), http.StatusOK, &visibles)
	require.Len(t, visibles.Data, 1)
	assert.Equal(t, cot.ID, visibles.Data[0].ID)

	expect(t, do(t, srv, "GET", "/v1/cotizaciones/visibles", nil, otro), http.StatusOK, &visibles)
	assert.Empty(t, visibles.Data)

	// Taller cannot use the proveedor feed
	expect(t, do(t, srv, "GET", "/v1/cotizaciones/visibles", nil, taller), http.StatusForbidden, nil)

	// 3. Oferta: 2 × 250 = 500
	oferta := map[string]any{
		"dias_entrega": 2,
		"items":        []map[string]any{{"nombre": "Pastillas", "cantidad": 2, "precio_unitario": "250"}},
	}
	var of idResp
	expect(t, do(t, srv, "POST", "/v1/cotizaciones/"+cot.ID+"/ofertas", jsonBody(t, oferta), prov), http.StatusCreated, &of)

	// One oferta per proveedor
	expect(t, do(t, srv, "POST", "/v1/cotizaciones/"+cot.ID+"/ofertas", jsonBody(t, oferta), prov), http.StatusBadRequest, nil)

	// Already offered: no longer visible
	expect(t, do(t, srv, "GET", "/v1/cotizaciones/visibles", nil, prov), http.StatusOK, &visibles)
	assert.Empty(t, visibles.Data)

	// 4. Ranking
	var ranking struct {
		MejorOfertaID *string `json:"mejor_oferta_id"`
		Ofertas       []struct {
			ID        string          `json:"id"`
			Total     decimal.Decimal `json:"total"`
			Cobertura decimal.Decimal `json:"cobertura"`
		} `json:"ofertas"`
	}
	expect(t, do(t, srv, "GET", "/v1/cotizaciones/"+cot.ID+"/ranking", nil, taller), http.StatusOK, &ranking)
	require.NotNil(t, ranking.MejorOfertaID)
	assert.Equal(t, of.ID, *ranking.MejorOfertaID)
	require.Len(t, ranking.Ofertas, 1)
	assert.True(t, ranking.Ofertas[0].Total.Equal(decimal.NewFromInt(500)))
	assert.True(t, ranking.Ofertas[0].Cobertura.Equal(decimal.NewFromInt(100)))

	// 5. Pedido
	var ped struct {
		ID     string          `json:"id"`
		Estado string          `json:"estado"`
		Total  decimal.Decimal `json:"total"`
	}
	pedidoReq := map[string]any{"oferta_id": of.ID, "direccion_entrega": "X"}
	expect(t, do(t, srv, "POST", "/v1/pedidos", jsonBody(t, pedidoReq), taller), http.StatusCreated, &ped)
	assert.Equal(t, "pendiente", ped.Estado)
	assert.True(t, ped.Total.Equal(decimal.NewFromInt(500)))

	// One pedido per cotización; the cotización is now cerrada
	expect(t, do(t, srv, "POST", "/v1/pedidos", jsonBody(t, pedidoReq), taller), http.StatusBadRequest, nil)
	var cerrada idResp
	expect(t, do(t, srv, "GET", "/v1/cotizaciones/"+cot.ID, nil, taller), http.StatusOK, &cerrada)
	assert.Equal(t, "cerrada", cerrada.Estado)

	// 6. Role-partitioned transitions
	estado := func(token, nuevo string) *http.Response {
		return do(t, srv, "PATCH", "/v1/pedidos/"+ped.ID+"/estado", jsonBody(t, map[string]string{"estado": nuevo}), token)
	}
	expect(t, estado(taller, "confirmado"), http.StatusForbidden, nil)
	expect(t, estado(prov, "entregado"), http.StatusForbidden, nil)
	expect(t, estado(otro, "confirmado"), http.StatusForbidden, nil)

	expect(t, estado(prov, "confirmado"), http.StatusOK, &ped)
	assert.Equal(t, "confirmado", ped.Estado)

	expect(t, estado(prov, "entregado"), http.StatusForbidden, nil)
	expect(t, estado(taller, "entregado"), http.StatusOK, &ped)
	assert.Equal(t, "entregado", ped.Estado)

	// Entregado is terminal
	expect(t, do(t, srv, "POST", "/v1/pedidos/"+ped.ID+"/cancelar", nil, taller), http.StatusBadRequest, nil)

	// Order slip
	resp := do(t, srv, "GET", "/v1/pedidos/"+ped.ID+"/pdf", nil, prov)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestE2E_CancelarCotizacionConPedido(t *testing.T) {
	env := setupTestEnv(t)
	srv := env.server

	taller := env.crearUsuario(t, map[string]any{"username": "taller1", "rol": "taller", "region": "R1"})
	prov := env.crearUsuario(t, map[string]any{
		"username": "prov1", "rol": "proveedor", "razon_social": "Repuestos Uno",
		"regiones": []string{"R1"},
	})

	var cot idResp
	expect(t, do(t, srv, "POST", "/v1/cotizaciones", jsonBody(t, map[string]any{
		"titulo": "Amortiguadores", "vehiculo_marca": "Fiat", "vehiculo_modelo": "Palio",
		"vehiculo_anio": 2010, "categoria": "Suspensión",
		"items": []map[string]any{{"nombre": "Amortiguador delantero", "cantidad": 2}},
	}), taller), http.StatusCreated, &cot)

	// Ofertas block deletion
	var of idResp
	expect(t, do(t, srv, "POST", "/v1/cotizaciones/"+cot.ID+"/ofertas", jsonBody(t, map[string]any{
		"dias_entrega": 1,
		"items":        []map[string]any{{"nombre": "Amortiguador delantero", "cantidad": 2, "precio_unitario": "100"}},
	}), prov), http.StatusCreated, &of)
	expect(t, do(t, srv, "DELETE", "/v1/cotizaciones/"+cot.ID, nil, taller), http.StatusBadRequest, nil)

	var ped idResp
	expect(t, do(t, srv, "POST", "/v1/pedidos", jsonBody(t, map[string]any{"oferta_id": of.ID, "direccion_entrega": "Calle 1"}), taller), http.StatusCreated, &ped)

	// With a pedido the cotización can no longer be cancelled
	expect(t, do(t, srv, "POST", "/v1/cotizaciones/"+cot.ID+"/cancelar", nil, taller), http.StatusBadRequest, nil)

	// Proveedor may cancel while pendiente
	expect(t, do(t, srv, "POST", "/v1/pedidos/"+ped.ID+"/cancelar", jsonBody(t, map[string]string{"motivo": "sin stock"}), prov), http.StatusOK, &ped)
	assert.Equal(t, "cancelado", ped.Estado)
}
