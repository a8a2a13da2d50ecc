package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"findautopart/internal/dto"
	"findautopart/internal/model"
	"findautopart/internal/repository"
	"findautopart/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CotizacionService owns the cotización state machine:
// abierta → cerrada | cancelada, both terminal.
type CotizacionService interface {
	Crear(ctx context.Context, tallerID uuid.UUID, req dto.CrearCotizacionRequest) (*dto.CotizacionResponse, error)
	ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.CotizacionResponse, error)
	Listar(ctx context.Context, actor Actor, filter dto.CotizacionFilter) (*dto.CotizacionListResponse, error)
	Actualizar(ctx context.Context, tallerID, id uuid.UUID, req dto.ActualizarCotizacionRequest) (*dto.CotizacionResponse, error)
	Cerrar(ctx context.Context, tallerID, id uuid.UUID) (*dto.CotizacionResponse, error)
	Cancelar(ctx context.Context, tallerID, id uuid.UUID) (*dto.CotizacionResponse, error)
	Eliminar(ctx context.Context, tallerID, id uuid.UUID) error
}

type cotizacionService struct {
	repo       repository.CotizacionRepository
	talleres   repository.TallerRepository
	categorias repository.CategoriaRepository
	ofertas    repository.OfertaRepository
	pedidos    repository.PedidoRepository
	notif      Notificador
	firmador   FirmadorURL
	now        func() time.Time
}

func NewCotizacionService(
	repo repository.CotizacionRepository,
	talleres repository.TallerRepository,
	categorias repository.CategoriaRepository,
	ofertas repository.OfertaRepository,
	pedidos repository.PedidoRepository,
	notif Notificador,
	firmador FirmadorURL,
) CotizacionService {
	return &cotizacionService{
		repo:       repo,
		talleres:   talleres,
		categorias: categorias,
		ofertas:    ofertas,
		pedidos:    pedidos,
		notif:      notif,
		firmador:   firmador,
		now:        time.Now,
	}
}

// ── Crear ────────────────────────────────────────────────────────────────────

func validarCotizacion(req dto.CrearCotizacionRequest) error {
	switch {
	case strings.TrimSpace(req.Titulo) == "":
		return validacion("el título es obligatorio")
	case strings.TrimSpace(req.VehiculoMarca) == "" || strings.TrimSpace(req.VehiculoModelo) == "":
		return validacion("marca y modelo del vehículo son obligatorios")
	case req.VehiculoAnio <= 0:
		return validacion("el año del vehículo es obligatorio")
	case strings.TrimSpace(req.Categoria) == "":
		return validacion("la categoría es obligatoria")
	case len(req.Items) == 0:
		return validacion("la cotización debe tener al menos un ítem")
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.Nombre) == "" {
			return validacion("ítem %d: el nombre es obligatorio", i+1)
		}
		if it.Cantidad < 1 {
			return validacion("ítem %d: la cantidad debe ser mayor a cero", i+1)
		}
	}
	return nil
}

func (s *cotizacionService) Crear(ctx context.Context, tallerID uuid.UUID, req dto.CrearCotizacionRequest) (*dto.CotizacionResponse, error) {
	if err := validarCotizacion(req); err != nil {
		return nil, err
	}

	taller, err := s.talleres.FindByID(ctx, tallerID)
	if err != nil {
		return nil, siNoExiste(err, "perfil de taller no encontrado")
	}

	cat, err := s.categorias.ObtenerPorNombre(ctx, strings.TrimSpace(req.Categoria))
	if err != nil && !errors.Is(err, repository.ErrNoEncontrado) {
		return nil, err
	}
	if cat == nil || !cat.Activo {
		return nil, validacion("categoría inválida: %s", req.Categoria)
	}

	c := &model.Cotizacion{
		ID:              uuid.New(),
		TallerID:        tallerID,
		Titulo:          strings.TrimSpace(req.Titulo),
		VehiculoMarca:   strings.TrimSpace(req.VehiculoMarca),
		VehiculoModelo:  strings.TrimSpace(req.VehiculoModelo),
		VehiculoAnio:    req.VehiculoAnio,
		VehiculoPatente: req.VehiculoPatente,
		Categoria:       cat.Nombre,
		Descripcion:     req.Descripcion,
		Estado:          model.CotizacionAbierta,
	}
	for i, it := range req.Items {
		c.Items = append(c.Items, model.CotizacionItem{
			ID:           uuid.New(),
			CotizacionID: c.ID,
			Posicion:     i + 1,
			Codigo:       it.Codigo,
			Nombre:       strings.TrimSpace(it.Nombre),
			Descripcion:  it.Descripcion,
			Marca:        it.Marca,
			ImagenKey:    it.ImagenKey,
			Cantidad:     it.Cantidad,
		})
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Taller = taller

	notificar(ctx, s.notif, aRol(model.RolProveedor, worker.EventoCotizacionCreada, map[string]interface{}{
		"cotizacion_id": c.ID.String(),
		"titulo":        c.Titulo,
		"categoria":     c.Categoria,
		"region":        taller.Region,
	}))

	resp := mapCotizacion(ctx, s.firmador, c)
	return &resp, nil
}

// ── Lectura ──────────────────────────────────────────────────────────────────

func (s *cotizacionService) ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.CotizacionResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "cotización no encontrada")
	}
	if actor.EsTaller() && c.TallerID != actor.ID {
		return nil, noAutorizado("la cotización pertenece a otro taller")
	}

	resp := mapCotizacion(ctx, s.firmador, c)
	if !actor.EsProveedor() {
		n, err := s.ofertas.CountByCotizacion(ctx, nil, c.ID)
		if err != nil {
			return nil, err
		}
		resp.CantidadOfertas = &n
	}
	return &resp, nil
}

func (s *cotizacionService) Listar(ctx context.Context, actor Actor, filter dto.CotizacionFilter) (*dto.CotizacionListResponse, error) {
	var scope *uuid.UUID
	switch {
	case actor.EsAdmin():
	case actor.EsTaller():
		scope = &actor.ID
	default:
		return nil, noAutorizado("solo talleres y administradores listan cotizaciones")
	}
	filter.Normalize()

	list, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	conteos, err := s.ofertas.CountByCotizaciones(ctx, ids)
	if err != nil {
		return nil, err
	}

	data := make([]dto.CotizacionResponse, 0, len(list))
	for i := range list {
		r := mapCotizacion(ctx, s.firmador, &list[i])
		n := conteos[list[i].ID]
		r.CantidadOfertas = &n
		data = append(data, r)
	}
	return &dto.CotizacionListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: dto.TotalPages(total, filter.Limit),
	}, nil
}

// ── Transiciones ─────────────────────────────────────────────────────────────

// propia loads id and checks that tallerID owns it.
func (s *cotizacionService) propia(ctx context.Context, tallerID, id uuid.UUID) (*model.Cotizacion, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "cotización no encontrada")
	}
	if c.TallerID != tallerID {
		return nil, noAutorizado("solo el taller dueño puede modificar la cotización")
	}
	return c, nil
}

func (s *cotizacionService) Actualizar(ctx context.Context, tallerID, id uuid.UUID, req dto.ActualizarCotizacionRequest) (*dto.CotizacionResponse, error) {
	c, err := s.propia(ctx, tallerID, id)
	if err != nil {
		return nil, err
	}
	if c.Estado != model.CotizacionAbierta {
		return nil, conflicto("%s", msgNoAbierta)
	}

	if req.Titulo != nil {
		if strings.TrimSpace(*req.Titulo) == "" {
			return nil, validacion("el título es obligatorio")
		}
		c.Titulo = strings.TrimSpace(*req.Titulo)
	}
	if req.VehiculoMarca != nil {
		c.VehiculoMarca = strings.TrimSpace(*req.VehiculoMarca)
	}
	if req.VehiculoModelo != nil {
		c.VehiculoModelo = strings.TrimSpace(*req.VehiculoModelo)
	}
	if req.VehiculoAnio != nil {
		c.VehiculoAnio = *req.VehiculoAnio
	}
	if req.VehiculoPatente != nil {
		c.VehiculoPatente = req.VehiculoPatente
	}
	if req.Descripcion != nil {
		c.Descripcion = *req.Descripcion
	}
	if c.VehiculoMarca == "" || c.VehiculoModelo == "" {
		return nil, validacion("marca y modelo del vehículo son obligatorios")
	}

	ok, err := s.repo.ActualizarCabecera(ctx, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflicto("%s", msgNoAbierta)
	}
	resp := mapCotizacion(ctx, s.firmador, c)
	return &resp, nil
}

func (s *cotizacionService) Cerrar(ctx context.Context, tallerID, id uuid.UUID) (*dto.CotizacionResponse, error) {
	c, err := s.propia(ctx, tallerID, id)
	if err != nil {
		return nil, err
	}
	if c.Estado != model.CotizacionAbierta {
		return nil, conflicto("%s", msgNoAbierta)
	}

	now := s.now()
	ok, err := s.repo.CambiarEstado(ctx, nil, id, model.CotizacionAbierta, model.CotizacionCerrada, &now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflicto("%s", msgNoAbierta)
	}
	c.Estado = model.CotizacionCerrada
	c.ClosedAt = &now

	s.avisarOferentes(ctx, c.ID, uuid.Nil, worker.EventoCotizacionCerrada)
	resp := mapCotizacion(ctx, s.firmador, c)
	return &resp, nil
}

// Cancelar locks the row and re-checks for a pedido inside the transaction:
// the estado alone is not trusted against a concurrent pedido creation.
func (s *cotizacionService) Cancelar(ctx context.Context, tallerID, id uuid.UUID) (*dto.CotizacionResponse, error) {
	var bloqueada *model.Cotizacion
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDLocked(ctx, tx, id, repository.BloqueoExclusivo)
		if err != nil {
			return siNoExiste(err, "cotización no encontrada")
		}
		if c.TallerID != tallerID {
			return noAutorizado("solo el taller dueño puede cancelar la cotización")
		}
		if c.Estado != model.CotizacionAbierta {
			return conflicto("%s", msgNoAbierta)
		}
		tienePedido, err := s.pedidos.ExisteParaCotizacion(ctx, tx, id)
		if err != nil {
			return err
		}
		if tienePedido {
			return conflicto("%s", msgPedidoDuplicado)
		}
		ok, err := s.repo.CambiarEstado(ctx, tx, id, model.CotizacionAbierta, model.CotizacionCancelada, nil)
		if err != nil {
			return err
		}
		if !ok {
			return conflicto("%s", msgNoAbierta)
		}
		c.Estado = model.CotizacionCancelada
		bloqueada = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.avisarOferentes(ctx, id, uuid.Nil, worker.EventoCotizacionCancelada)

	// The cancellation is committed; a failed re-read only costs the items.
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("cotizacion_id", id.String()).Msg("cotización cancelada sin recarga de ítems")
		c = bloqueada
	}
	resp := mapCotizacion(ctx, s.firmador, c)
	return &resp, nil
}

// Eliminar refuses when any oferta exists: suppliers' work is never dropped silently.
func (s *cotizacionService) Eliminar(ctx context.Context, tallerID, id uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDLocked(ctx, tx, id, repository.BloqueoExclusivo)
		if err != nil {
			return siNoExiste(err, "cotización no encontrada")
		}
		if c.TallerID != tallerID {
			return noAutorizado("solo el taller dueño puede eliminar la cotización")
		}
		n, err := s.ofertas.CountByCotizacion(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflicto("la cotización tiene ofertas y no puede eliminarse")
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

// avisarOferentes notifies every proveedor that offered on cotizacionID except excluir.
func (s *cotizacionService) avisarOferentes(ctx context.Context, cotizacionID, excluir uuid.UUID, evento string) {
	avisarOferentes(ctx, s.ofertas, s.notif, cotizacionID, excluir, evento)
}

func avisarOferentes(ctx context.Context, ofertas repository.OfertaRepository, nt Notificador, cotizacionID, excluir uuid.UUID, evento string) {
	if nt == nil {
		return
	}
	list, err := ofertas.ListByCotizacion(ctx, cotizacionID)
	if err != nil {
		log.Warn().Err(err).Str("cotizacion_id", cotizacionID.String()).Msg("no se pudo avisar a los oferentes")
		return
	}
	for _, o := range list {
		if o.ProveedorID == excluir {
			continue
		}
		notificar(ctx, nt, aUsuario(o.ProveedorID.String(), evento, map[string]interface{}{
			"cotizacion_id": cotizacionID.String(),
			"oferta_id":     o.ID.String(),
		}))
	}
}
