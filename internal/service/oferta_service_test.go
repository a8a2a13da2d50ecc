package service_test

import (
	"context"
	"testing"
	"time"

	"findautopart/internal/dto"
	"findautopart/internal/service"
	"findautopart/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOferta_CrearAvisaAlTaller(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	prov := m.nuevoProveedor([]string{"Córdoba"}, []string{"Frenos"})
	id := m.nuevaCotizacion(taller, "Frenos")

	resp, err := m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("100", "250.50"))
	require.NoError(t, err)
	assert.Equal(t, "350.50", resp.Total.StringFixed(2))
	assert.Equal(t, 2, resp.ItemsTotales)
	assert.NotEmpty(t, resp.ProveedorNombre)

	assert.Eventually(t, func() bool {
		ns := m.notif.eventos(worker.EventoOfertaCreada)
		return len(ns) == 1 && ns[0].Destino == taller.ID.String()
	}, time.Second, 10*time.Millisecond)
}

func TestOferta_SegundaDelMismoProveedorEsConflicto(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	prov := m.nuevoProveedor([]string{"Córdoba"}, nil)
	id := m.nuevaCotizacion(taller, "Frenos")

	_, err := m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("100"))
	require.NoError(t, err)

	_, err = m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("90"))
	require.Error(t, err)
	assert.Equal(t, service.KindConflicto, service.KindOf(err))
	assert.Len(t, m.ofertas.ofertas, 1, "exactly one oferta persists")
}

// When the pre-check misses a concurrent insert, the unique index rejects the
// second oferta and the caller sees the same error as the fast path.
func TestOferta_DuplicadoPorIndiceMismoError(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	prov := m.nuevoProveedor([]string{"Córdoba"}, nil)
	id := m.nuevaCotizacion(taller, "Frenos")

	_, err := m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("100"))
	require.NoError(t, err)

	_, precheck := m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("90"))

	m.ofertas.ocultarExistentes = true
	_, indice := m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("80"))

	require.Error(t, indice)
	assert.Equal(t, service.KindConflicto, service.KindOf(indice))
	assert.Equal(t, precheck.Error(), indice.Error())
	assert.Len(t, m.ofertas.ofertas, 1)
}

func TestOferta_CotizacionNoAbierta(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	prov := m.nuevoProveedor([]string{"Córdoba"}, nil)
	id := m.nuevaCotizacion(taller, "Frenos")
	_, err := m.cotizacionSvc.Cancelar(context.Background(), taller.ID, id)
	require.NoError(t, err)

	_, err = m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("100"))
	assert.Equal(t, service.KindConflicto, service.KindOf(err))
	assert.Empty(t, m.ofertas.ofertas)
}

func TestOferta_Validaciones(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	prov := m.nuevoProveedor([]string{"Córdoba"}, nil)
	id := m.nuevaCotizacion(taller, "Frenos")

	ajeno := uuid.New()
	cases := map[string]func(r *dto.CrearOfertaRequest){
		"sin items":        func(r *dto.CrearOfertaRequest) { r.Items = nil },
		"precio negativo":  func(r *dto.CrearOfertaRequest) { r.Items[0].PrecioUnitario = decimal.NewFromInt(-1) },
		"cantidad cero":    func(r *dto.CrearOfertaRequest) { r.Items[0].Cantidad = 0 },
		"dias negativos":   func(r *dto.CrearOfertaRequest) { r.DiasEntrega = -1 },
		"item de otra cot": func(r *dto.CrearOfertaRequest) { r.Items[0].CotizacionItemID = &ajeno },
		"tres decimales":   func(r *dto.CrearOfertaRequest) { r.Items[0].PrecioUnitario = decimal.RequireFromString("10.005") },
		"precio excedido":  func(r *dto.CrearOfertaRequest) { r.Items[0].PrecioUnitario = decimal.RequireFromString("1000000000000") },
		"total excedido": func(r *dto.CrearOfertaRequest) {
			r.Items[0].PrecioUnitario = decimal.RequireFromString("999999999999.99")
			r.Items[0].Cantidad = 2
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := ofertaReq("100")
			mutate(&req)
			_, err := m.ofertaSvc.Crear(context.Background(), prov.ID, id, req)
			assert.Equal(t, service.KindValidacion, service.KindOf(err))
		})
	}
	assert.Empty(t, m.ofertas.ofertas)
}

func TestOferta_PrecioConDosDecimales(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	prov := m.nuevoProveedor([]string{"Córdoba"}, nil)
	id := m.nuevaCotizacion(taller, "Frenos")

	res, err := m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("10.50"))
	require.NoError(t, err)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("10.5")))
}

func TestOferta_ProveedorInactivo(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	prov := m.nuevoProveedor([]string{"Córdoba"}, nil)
	m.proveedores.proveedores[prov.ID].Activo = false
	id := m.nuevaCotizacion(taller, "Frenos")

	_, err := m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("100"))
	assert.Equal(t, service.KindNoAutorizado, service.KindOf(err))
}

func TestOferta_VisibilidadDeListado(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	a := m.nuevoProveedor([]string{"Córdoba"}, nil)
	b := m.nuevoProveedor([]string{"Córdoba"}, nil)
	id := m.nuevaCotizacion(taller, "Frenos")
	_, err := m.ofertaSvc.Crear(context.Background(), a.ID, id, ofertaReq("100"))
	require.NoError(t, err)
	ob, err := m.ofertaSvc.Crear(context.Background(), b.ID, id, ofertaReq("90"))
	require.NoError(t, err)

	todas, err := m.ofertaSvc.ListarPorCotizacion(context.Background(), taller, id)
	require.NoError(t, err)
	assert.Len(t, todas, 2)

	propias, err := m.ofertaSvc.ListarPorCotizacion(context.Background(), a, id)
	require.NoError(t, err)
	require.Len(t, propias, 1)
	assert.Equal(t, a.ID, propias[0].ProveedorID)

	_, err = m.ofertaSvc.ObtenerPorID(context.Background(), a, ob.ID)
	assert.Equal(t, service.KindNoAutorizado, service.KindOf(err), "a competitor's oferta is hidden")

	_, err = m.ofertaSvc.ListarPorCotizacion(context.Background(), m.nuevoTaller("Córdoba"), id)
	assert.Equal(t, service.KindNoAutorizado, service.KindOf(err))
}

// ── Ranking ──────────────────────────────────────────────────────────────────

func TestRanking_SinOfertas(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	id := m.nuevaCotizacion(taller, "Frenos")

	resp, err := m.ofertaSvc.Ranking(context.Background(), taller, id)
	require.NoError(t, err)
	assert.Nil(t, resp.MejorOfertaID)
	assert.Empty(t, resp.Ofertas)
	assert.Empty(t, resp.Comparativa)
}

func TestRanking_CotizacionInexistente(t *testing.T) {
	m := newMercado()
	_, err := m.ofertaSvc.Ranking(context.Background(), admin(), uuid.New())
	assert.Equal(t, service.KindNoEncontrado, service.KindOf(err))
}

func TestRanking_MejorOfertaYComparativa(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	id := m.nuevaCotizacion(taller, "Frenos")

	completa := m.nuevoProveedor([]string{"Córdoba"}, nil)
	parcial := m.nuevoProveedor([]string{"Córdoba"}, nil)

	_, err := m.ofertaSvc.Crear(context.Background(), completa.ID, id, ofertaReq("300", "200"))
	require.NoError(t, err)

	no := false
	req := ofertaReq("50", "400")
	req.Items[1].Disponible = &no
	_, err = m.ofertaSvc.Crear(context.Background(), parcial.ID, id, req)
	require.NoError(t, err)

	resp, err := m.ofertaSvc.Ranking(context.Background(), taller, id)
	require.NoError(t, err)
	require.Len(t, resp.Ofertas, 2)
	require.NotNil(t, resp.MejorOfertaID)

	assert.Equal(t, completa.ID, resp.Ofertas[0].ProveedorID, "full coverage wins")
	assert.Equal(t, resp.Ofertas[0].ID, *resp.MejorOfertaID)
	assert.Equal(t, parcial.ID, resp.Comparativa[0].ProveedorID, "price view ignores coverage")
	assert.Equal(t, "50.00", resp.Comparativa[0].Total.StringFixed(2))

	again, err := m.ofertaSvc.Ranking(context.Background(), taller, id)
	require.NoError(t, err)
	assert.Equal(t, *resp.MejorOfertaID, *again.MejorOfertaID)
	for i := range resp.Ofertas {
		assert.Equal(t, resp.Ofertas[i].ID, again.Ofertas[i].ID)
	}
}

func TestRanking_SoloDuenio(t *testing.T) {
	m := newMercado()
	taller := m.nuevoTaller("Córdoba")
	prov := m.nuevoProveedor([]string{"Córdoba"}, nil)
	id := m.nuevaCotizacion(taller, "Frenos")

	_, err := m.ofertaSvc.Ranking(context.Background(), prov, id)
	assert.Equal(t, service.KindNoAutorizado, service.KindOf(err))

	_, err = m.ofertaSvc.Ranking(context.Background(), admin(), id)
	assert.NoError(t, err)
}

func TestOferta_ListarMias(t *testing.T) {
	m := newMercado()
	prov := m.nuevoProveedor([]string{"Córdoba"}, nil)
	for i := 0; i < 3; i++ {
		id := m.nuevaCotizacion(m.nuevoTaller("Córdoba"), "Frenos")
		_, err := m.ofertaSvc.Crear(context.Background(), prov.ID, id, ofertaReq("10"))
		require.NoError(t, err)
	}

	list, total, err := m.ofertaSvc.ListarMias(context.Background(), prov.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 3)
	for _, o := range list {
		assert.Equal(t, prov.ID, o.ProveedorID)
	}
}
