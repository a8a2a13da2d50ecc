package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"findautopart/internal/dto"
	"findautopart/internal/matching"
	"findautopart/internal/model"
	"findautopart/internal/repository"
	"findautopart/internal/service"
	"findautopart/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories. DB() returns nil so service transactions run fn(nil).

type stubTallerRepo struct {
	talleres map[uuid.UUID]*model.Taller
}

func newStubTallerRepo() *stubTallerRepo {
	return &stubTallerRepo{talleres: make(map[uuid.UUID]*model.Taller)}
}

func (r *stubTallerRepo) Create(_ context.Context, _ *gorm.DB, t *model.Taller) error {
	r.talleres[t.ID] = t
	return nil
}

func (r *stubTallerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Taller, error) {
	t, ok := r.talleres[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *t
	return &cp, nil
}

func (r *stubTallerRepo) Update(_ context.Context, t *model.Taller) error {
	cp := *t
	r.talleres[t.ID] = &cp
	return nil
}

var _ repository.TallerRepository = (*stubTallerRepo)(nil)

type stubProveedorRepo struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{proveedores: make(map[uuid.UUID]*model.Proveedor)}
}

func (r *stubProveedorRepo) Create(_ context.Context, _ *gorm.DB, p *model.Proveedor) error {
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *p
	return &cp, nil
}

func (r *stubProveedorRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Proveedor, error) {
	var out []model.Proveedor
	for _, id := range ids {
		if p, ok := r.proveedores[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProveedorRepo) List(_ context.Context) ([]model.Proveedor, error) {
	var out []model.Proveedor
	for _, p := range r.proveedores {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	cp := *p
	r.proveedores[p.ID] = &cp
	return nil
}

func (r *stubProveedorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.proveedores[id]; ok {
		p.Activo = false
	}
	return nil
}

var _ repository.ProveedorRepository = (*stubProveedorRepo)(nil)

type stubCategoriaRepo struct {
	categorias map[uuid.UUID]*model.Categoria
}

func newStubCategoriaRepo(nombres ...string) *stubCategoriaRepo {
	r := &stubCategoriaRepo{categorias: make(map[uuid.UUID]*model.Categoria)}
	for _, n := range nombres {
		c := &model.Categoria{ID: uuid.New(), Nombre: n, Activo: true}
		r.categorias[c.ID] = c
	}
	return r
}

func (r *stubCategoriaRepo) Crear(_ context.Context, c *model.Categoria) error {
	for _, e := range r.categorias {
		if strings.EqualFold(e.Nombre, c.Nombre) {
			return repository.ErrDuplicado
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.categorias[c.ID] = &cp
	return nil
}

func (r *stubCategoriaRepo) Listar(_ context.Context, soloActivas bool) ([]model.Categoria, error) {
	var out []model.Categoria
	for _, c := range r.categorias {
		if soloActivas && !c.Activo {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubCategoriaRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	c, ok := r.categorias[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoriaRepo) ObtenerPorNombre(_ context.Context, nombre string) (*model.Categoria, error) {
	for _, c := range r.categorias {
		if strings.EqualFold(c.Nombre, nombre) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubCategoriaRepo) ActivasPorNombre(_ context.Context, nombres []string) ([]model.Categoria, error) {
	var out []model.Categoria
	for _, c := range r.categorias {
		if !c.Activo {
			continue
		}
		for _, n := range nombres {
			if strings.EqualFold(c.Nombre, n) {
				out = append(out, *c)
				break
			}
		}
	}
	return out, nil
}

func (r *stubCategoriaRepo) Actualizar(_ context.Context, c *model.Categoria) error {
	cp := *c
	r.categorias[c.ID] = &cp
	return nil
}

func (r *stubCategoriaRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	if c, ok := r.categorias[id]; ok {
		c.Activo = false
	}
	return nil
}

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)

// stubOfertaRepo keeps insertion order, which stands in for created_at, id.
type stubOfertaRepo struct {
	ofertas []*model.Oferta
	// ocultarExistentes makes ExistePorProveedor always answer false, so the
	// duplicate is only caught by Create (the unique index path).
	ocultarExistentes bool
}

func newStubOfertaRepo() *stubOfertaRepo { return &stubOfertaRepo{} }

func (r *stubOfertaRepo) Create(_ context.Context, _ *gorm.DB, o *model.Oferta) error {
	for _, e := range r.ofertas {
		if e.CotizacionID == o.CotizacionID && e.ProveedorID == o.ProveedorID {
			return repository.ErrDuplicado
		}
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	cp := *o
	r.ofertas = append(r.ofertas, &cp)
	return nil
}

func (r *stubOfertaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Oferta, error) {
	for _, o := range r.ofertas {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNoEncontrado
}

func (r *stubOfertaRepo) ExistePorProveedor(_ context.Context, _ *gorm.DB, cotizacionID, proveedorID uuid.UUID) (bool, error) {
	if r.ocultarExistentes {
		return false, nil
	}
	return r.existe(cotizacionID, proveedorID), nil
}

func (r *stubOfertaRepo) existe(cotizacionID, proveedorID uuid.UUID) bool {
	for _, o := range r.ofertas {
		if o.CotizacionID == cotizacionID && o.ProveedorID == proveedorID {
			return true
		}
	}
	return false
}

func (r *stubOfertaRepo) ListByCotizacion(_ context.Context, cotizacionID uuid.UUID) ([]model.Oferta, error) {
	var out []model.Oferta
	for _, o := range r.ofertas {
		if o.CotizacionID == cotizacionID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOfertaRepo) ListByProveedor(_ context.Context, proveedorID uuid.UUID, _, _ int) ([]model.Oferta, int64, error) {
	var out []model.Oferta
	for _, o := range r.ofertas {
		if o.ProveedorID == proveedorID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubOfertaRepo) CountByCotizacion(_ context.Context, _ *gorm.DB, cotizacionID uuid.UUID) (int64, error) {
	var n int64
	for _, o := range r.ofertas {
		if o.CotizacionID == cotizacionID {
			n++
		}
	}
	return n, nil
}

func (r *stubOfertaRepo) CountByCotizaciones(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ids))
	for _, id := range ids {
		n, _ := r.CountByCotizacion(ctx, nil, id)
		out[id] = n
	}
	return out, nil
}

var _ repository.OfertaRepository = (*stubOfertaRepo)(nil)

type stubCotizacionRepo struct {
	cotizaciones map[uuid.UUID]*model.Cotizacion
	vistas       map[[2]uuid.UUID]time.Time
	talleres     *stubTallerRepo
	ofertas      *stubOfertaRepo
	// errLectura, when set, fails FindByID (not FindByIDLocked).
	errLectura error
}

func newStubCotizacionRepo(talleres *stubTallerRepo, ofertas *stubOfertaRepo) *stubCotizacionRepo {
	return &stubCotizacionRepo{
		cotizaciones: make(map[uuid.UUID]*model.Cotizacion),
		vistas:       make(map[[2]uuid.UUID]time.Time),
		talleres:     talleres,
		ofertas:      ofertas,
	}
}

func (r *stubCotizacionRepo) Create(_ context.Context, c *model.Cotizacion) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	cp := *c
	cp.Taller = nil
	r.cotizaciones[c.ID] = &cp
	return nil
}

func (r *stubCotizacionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cotizacion, error) {
	if r.errLectura != nil {
		return nil, r.errLectura
	}
	c, ok := r.cotizaciones[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *c
	if t, ok := r.talleres.talleres[c.TallerID]; ok {
		cp.Taller = t
	}
	return &cp, nil
}

func (r *stubCotizacionRepo) FindByIDLocked(_ context.Context, _ *gorm.DB, id uuid.UUID, _ repository.Bloqueo) (*model.Cotizacion, error) {
	c, ok := r.cotizaciones[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *c
	cp.Items = nil
	return &cp, nil
}

func (r *stubCotizacionRepo) ActualizarCabecera(_ context.Context, c *model.Cotizacion) (bool, error) {
	cur, ok := r.cotizaciones[c.ID]
	if !ok || cur.Estado != model.CotizacionAbierta {
		return false, nil
	}
	cur.Titulo = c.Titulo
	cur.VehiculoMarca = c.VehiculoMarca
	cur.VehiculoModelo = c.VehiculoModelo
	cur.VehiculoAnio = c.VehiculoAnio
	cur.VehiculoPatente = c.VehiculoPatente
	cur.Descripcion = c.Descripcion
	return true, nil
}

func (r *stubCotizacionRepo) CambiarEstado(_ context.Context, _ *gorm.DB, id uuid.UUID, desde, hacia string, closedAt *time.Time) (bool, error) {
	c, ok := r.cotizaciones[id]
	if !ok || c.Estado != desde {
		return false, nil
	}
	c.Estado = hacia
	if closedAt != nil {
		c.ClosedAt = closedAt
	}
	return true, nil
}

func (r *stubCotizacionRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(r.cotizaciones, id)
	return nil
}

func (r *stubCotizacionRepo) ordenadas() []model.Cotizacion {
	out := make([]model.Cotizacion, 0, len(r.cotizaciones))
	for _, c := range r.cotizaciones {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubCotizacionRepo) List(_ context.Context, tallerID *uuid.UUID, filter dto.CotizacionFilter) ([]model.Cotizacion, int64, error) {
	var out []model.Cotizacion
	for _, c := range r.ordenadas() {
		if tallerID != nil && c.TallerID != *tallerID {
			continue
		}
		if filter.Estado != "" && c.Estado != filter.Estado {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

// ListVisibles evaluates matching.Visible in memory, the same predicate the
// SQL filter encodes.
func (r *stubCotizacionRepo) ListVisibles(_ context.Context, crit matching.Criterio, _ dto.CotizacionFilter) ([]model.Cotizacion, int64, error) {
	var out []model.Cotizacion
	for _, c := range r.ordenadas() {
		region := ""
		if t, ok := r.talleres.talleres[c.TallerID]; ok {
			region = t.Region
		}
		cand := matching.Candidata{
			Estado:       c.Estado,
			Categoria:    c.Categoria,
			RegionTaller: region,
			YaOfertada:   r.ofertas.existe(c.ID, crit.ProveedorID),
		}
		if matching.Visible(crit, cand) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubCotizacionRepo) VistasDe(_ context.Context, proveedorID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if _, ok := r.vistas[[2]uuid.UUID{id, proveedorID}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *stubCotizacionRepo) MarcarVista(_ context.Context, v *model.CotizacionVista) error {
	k := [2]uuid.UUID{v.CotizacionID, v.ProveedorID}
	if _, ok := r.vistas[k]; !ok {
		r.vistas[k] = v.VistaAt
	}
	return nil
}

func (r *stubCotizacionRepo) DB() *gorm.DB { return nil }

var _ repository.CotizacionRepository = (*stubCotizacionRepo)(nil)

type stubPedidoRepo struct {
	pedidos map[uuid.UUID]*model.Pedido
	// ocultarExistentes makes ExisteParaCotizacion always answer false.
	ocultarExistentes bool
}

func newStubPedidoRepo() *stubPedidoRepo {
	return &stubPedidoRepo{pedidos: make(map[uuid.UUID]*model.Pedido)}
}

func (r *stubPedidoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	for _, e := range r.pedidos {
		if e.CotizacionID == p.CotizacionID {
			return repository.ErrDuplicado
		}
	}
	cp := *p
	r.pedidos[p.ID] = &cp
	return nil
}

func (r *stubPedidoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, repository.ErrNoEncontrado
	}
	cp := *p
	return &cp, nil
}

func (r *stubPedidoRepo) ExisteParaCotizacion(_ context.Context, _ *gorm.DB, cotizacionID uuid.UUID) (bool, error) {
	if r.ocultarExistentes {
		return false, nil
	}
	return r.contar(cotizacionID) > 0, nil
}

func (r *stubPedidoRepo) contar(cotizacionID uuid.UUID) int {
	n := 0
	for _, p := range r.pedidos {
		if p.CotizacionID == cotizacionID {
			n++
		}
	}
	return n
}

func (r *stubPedidoRepo) ActualizarEstado(_ context.Context, id uuid.UUID, desde string, cambios map[string]interface{}) (bool, error) {
	p, ok := r.pedidos[id]
	if !ok || p.Estado != desde {
		return false, nil
	}
	for k, v := range cambios {
		switch k {
		case "estado":
			p.Estado = v.(string)
		case "entregado_at":
			t := v.(time.Time)
			p.EntregadoAt = &t
		case "cancelado_por":
			s := v.(string)
			p.CanceladoPor = &s
		case "motivo_cancelacion":
			p.MotivoCancelacion = v.(*string)
		case "updated_at":
			p.UpdatedAt = v.(time.Time)
		}
	}
	return true, nil
}

func (r *stubPedidoRepo) List(_ context.Context, scope repository.PedidoScope, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var out []model.Pedido
	for _, p := range r.pedidos {
		if scope.TallerID != nil && p.TallerID != *scope.TallerID {
			continue
		}
		if scope.ProveedorID != nil && p.ProveedorID != *scope.ProveedorID {
			continue
		}
		if filter.Estado != "" && p.Estado != filter.Estado {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPedidoRepo) ListConCotizacionAbierta(_ context.Context, _ int) ([]model.Pedido, error) {
	return nil, nil
}

func (r *stubPedidoRepo) DB() *gorm.DB { return nil }

var _ repository.PedidoRepository = (*stubPedidoRepo)(nil)

// stubNotificador records enqueued notifications. Enqueue runs on its own
// goroutine, so reads go through the mutex.
type stubNotificador struct {
	mu  sync.Mutex
	got []worker.Notificacion
	err error
}

func (n *stubNotificador) EnqueueNotificacion(_ context.Context, nt worker.Notificacion) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, nt)
	return n.err
}

// fallar makes every later enqueue return err.
func (n *stubNotificador) fallar(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func (n *stubNotificador) eventos(evento string) []worker.Notificacion {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []worker.Notificacion
	for _, nt := range n.got {
		if nt.Evento == evento {
			out = append(out, nt)
		}
	}
	return out
}

var _ service.Notificador = (*stubNotificador)(nil)

type stubFirmador struct{}

func (stubFirmador) SignForRead(_ context.Context, key string) (string, error) {
	return "https://blobs.test/" + key + "?firmado=1", nil
}

var _ service.FirmadorURL = stubFirmador{}

// ── Fixture ──────────────────────────────────────────────────────────────────

// mercado wires every lifecycle service against one set of in-memory stores.
type mercado struct {
	talleres     *stubTallerRepo
	proveedores  *stubProveedorRepo
	categorias   *stubCategoriaRepo
	ofertas      *stubOfertaRepo
	cotizaciones *stubCotizacionRepo
	pedidos      *stubPedidoRepo
	notif        *stubNotificador

	cotizacionSvc service.CotizacionService
	matchingSvc   service.MatchingService
	ofertaSvc     service.OfertaService
	pedidoSvc     service.PedidoService
}

func newMercado() *mercado {
	m := &mercado{
		talleres:    newStubTallerRepo(),
		proveedores: newStubProveedorRepo(),
		categorias:  newStubCategoriaRepo("Frenos", "Suspensión", "Motor"),
		ofertas:     newStubOfertaRepo(),
		pedidos:     newStubPedidoRepo(),
		notif:       &stubNotificador{},
	}
	m.cotizaciones = newStubCotizacionRepo(m.talleres, m.ofertas)
	m.cotizacionSvc = service.NewCotizacionService(m.cotizaciones, m.talleres, m.categorias, m.ofertas, m.pedidos, m.notif, stubFirmador{})
	m.matchingSvc = service.NewMatchingService(m.cotizaciones, m.proveedores, stubFirmador{})
	m.ofertaSvc = service.NewOfertaService(m.ofertas, m.cotizaciones, m.proveedores, m.notif)
	m.pedidoSvc = service.NewPedidoService(m.pedidos, m.cotizaciones, m.ofertas, m.talleres, m.proveedores, m.notif)
	return m
}

func (m *mercado) nuevoTaller(region string) service.Actor {
	id := uuid.New()
	m.talleres.talleres[id] = &model.Taller{ID: id, Nombre: "Taller " + region, Region: region}
	return service.Actor{ID: id, Rol: model.RolTaller}
}

func (m *mercado) nuevoProveedor(regiones, categorias []string) service.Actor {
	id := uuid.New()
	m.proveedores.proveedores[id] = &model.Proveedor{
		ID:          id,
		RazonSocial: "Repuestos " + id.String()[:4],
		Regiones:    regiones,
		Categorias:  categorias,
		Activo:      true,
	}
	return service.Actor{ID: id, Rol: model.RolProveedor}
}

func admin() service.Actor {
	return service.Actor{ID: uuid.New(), Rol: model.RolAdministrador}
}

func cotizacionReq(categoria string, items int) dto.CrearCotizacionRequest {
	req := dto.CrearCotizacionRequest{
		Titulo:         "Pastillas y discos",
		VehiculoMarca:  "Ford",
		VehiculoModelo: "Focus",
		VehiculoAnio:   2018,
		Categoria:      categoria,
	}
	for i := 0; i < items; i++ {
		req.Items = append(req.Items, dto.CotizacionItemInput{Nombre: "Pieza", Cantidad: 1})
	}
	return req
}

func (m *mercado) nuevaCotizacion(taller service.Actor, categoria string) uuid.UUID {
	resp, err := m.cotizacionSvc.Crear(context.Background(), taller.ID, cotizacionReq(categoria, 2))
	if err != nil {
		panic(err)
	}
	return resp.ID
}
