package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"findautopart/internal/dto"
	"findautopart/internal/infra"
	"findautopart/internal/model"
	"findautopart/internal/repository"
	"findautopart/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PedidoService interface {
	Crear(ctx context.Context, tallerID uuid.UUID, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error)
	CambiarEstado(ctx context.Context, actor Actor, id uuid.UUID, nuevo string, motivo *string) (*dto.PedidoResponse, error)
	Cancelar(ctx context.Context, actor Actor, id uuid.UUID, motivo *string) (*dto.PedidoResponse, error)
	ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.PedidoResponse, error)
	Listar(ctx context.Context, actor Actor, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	GenerarPDF(ctx context.Context, actor Actor, id uuid.UUID) ([]byte, error)
}

type pedidoService struct {
	repo         repository.PedidoRepository
	cotizaciones repository.CotizacionRepository
	ofertas      repository.OfertaRepository
	talleres     repository.TallerRepository
	proveedores  repository.ProveedorRepository
	notif        Notificador
	now          func() time.Time
}

func NewPedidoService(
	repo repository.PedidoRepository,
	cotizaciones repository.CotizacionRepository,
	ofertas repository.OfertaRepository,
	talleres repository.TallerRepository,
	proveedores repository.ProveedorRepository,
	notif Notificador,
) PedidoService {
	return &pedidoService{
		repo:         repo,
		cotizaciones: cotizaciones,
		ofertas:      ofertas,
		talleres:     talleres,
		proveedores:  proveedores,
		notif:        notif,
		now:          time.Now,
	}
}

// ── Crear ────────────────────────────────────────────────────────────────────
// One transaction:
//   1. lock the cotización FOR UPDATE
//   2. owner, abierta and no-pedido checks
//   3. insert the pedido (uq_pedidos_cotizacion is the final guard)
//   4. abierta → cerrada, conditional; 0 rows rolls everything back
// A pedido therefore never exists against an abierta cotización, and a
// cotización is never closed by this path without its pedido.

func (s *pedidoService) Crear(ctx context.Context, tallerID uuid.UUID, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	if strings.TrimSpace(req.DireccionEntrega) == "" {
		return nil, validacion("la dirección de entrega es obligatoria")
	}

	oferta, err := s.ofertas.FindByID(ctx, req.OfertaID)
	if err != nil {
		return nil, siNoExiste(err, "oferta no encontrada")
	}
	resumen := ResumirOferta(oferta)
	now := s.now()

	var pedido *model.Pedido
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cot, err := s.cotizaciones.FindByIDLocked(ctx, tx, oferta.CotizacionID, repository.BloqueoExclusivo)
		if err != nil {
			return siNoExiste(err, "cotización no encontrada")
		}
		if cot.TallerID != tallerID {
			return noAutorizado("la cotización pertenece a otro taller")
		}
		if cot.Estado != model.CotizacionAbierta {
			return conflicto("%s", msgNoAbierta)
		}
		existe, err := s.repo.ExisteParaCotizacion(ctx, tx, cot.ID)
		if err != nil {
			return err
		}
		if existe {
			return conflicto("%s", msgPedidoDuplicado)
		}

		pedido = &model.Pedido{
			ID:                   uuid.New(),
			CotizacionID:         cot.ID,
			OfertaID:             oferta.ID,
			TallerID:             tallerID,
			ProveedorID:          oferta.ProveedorID,
			Total:                resumen.Total,
			DireccionEntrega:     strings.TrimSpace(req.DireccionEntrega),
			Notas:                req.Notas,
			Estado:               model.PedidoPendiente,
			FechaEntregaEstimada: now.AddDate(0, 0, oferta.DiasEntrega),
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := s.repo.Create(ctx, tx, pedido); err != nil {
			if errors.Is(err, repository.ErrDuplicado) {
				return conflicto("%s", msgPedidoDuplicado)
			}
			return err
		}

		ok, err := s.cotizaciones.CambiarEstado(ctx, tx, cot.ID, model.CotizacionAbierta, model.CotizacionCerrada, &now)
		if err != nil {
			return err
		}
		if !ok {
			return conflicto("%s", msgNoAbierta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notificar(ctx, s.notif, aUsuario(pedido.ProveedorID.String(), worker.EventoPedidoCreado, map[string]interface{}{
		"pedido_id":     pedido.ID.String(),
		"cotizacion_id": pedido.CotizacionID.String(),
		"total":         pedido.Total.StringFixed(2),
	}))
	avisarOferentes(ctx, s.ofertas, s.notif, pedido.CotizacionID, pedido.ProveedorID, worker.EventoCotizacionCerrada)

	resp := mapPedido(pedido)
	return &resp, nil
}

// ── Transiciones ─────────────────────────────────────────────────────────────

func (s *pedidoService) CambiarEstado(ctx context.Context, actor Actor, id uuid.UUID, nuevo string, motivo *string) (*dto.PedidoResponse, error) {
	if !estadoPedidoValido(nuevo) {
		return nil, validacion("estado de pedido inválido: %s", nuevo)
	}
	if nuevo == model.PedidoCancelado {
		return s.Cancelar(ctx, actor, id, motivo)
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "pedido no encontrado")
	}
	desde, err := autorizarTransicion(actor, p, nuevo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cambios := map[string]interface{}{"estado": nuevo, "updated_at": now}
	if nuevo == model.PedidoEntregado {
		cambios["entregado_at"] = now
	}
	ok, err := s.repo.ActualizarEstado(ctx, id, desde, cambios)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflicto("el pedido cambió de estado, reintente")
	}

	p.Estado = nuevo
	p.UpdatedAt = now
	if nuevo == model.PedidoEntregado {
		p.EntregadoAt = &now
	}
	s.avisarEstado(ctx, actor, p)

	resp := mapPedido(p)
	return &resp, nil
}

func (s *pedidoService) Cancelar(ctx context.Context, actor Actor, id uuid.UUID, motivo *string) (*dto.PedidoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "pedido no encontrado")
	}
	if err := autorizarCancelacion(actor, p); err != nil {
		return nil, err
	}

	now := s.now()
	rol := actor.Rol
	ok, err := s.repo.ActualizarEstado(ctx, id, p.Estado, map[string]interface{}{
		"estado":             model.PedidoCancelado,
		"cancelado_por":      rol,
		"motivo_cancelacion": motivo,
		"updated_at":         now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflicto("el pedido cambió de estado, reintente")
	}

	p.Estado = model.PedidoCancelado
	p.CanceladoPor = &rol
	p.MotivoCancelacion = motivo
	p.UpdatedAt = now
	s.avisarEstado(ctx, actor, p)

	resp := mapPedido(p)
	return &resp, nil
}

func (s *pedidoService) avisarEstado(ctx context.Context, actor Actor, p *model.Pedido) {
	for _, destino := range contraparte(actor, p) {
		notificar(ctx, s.notif, aUsuario(destino, worker.EventoPedidoEstado, map[string]interface{}{
			"pedido_id": p.ID.String(),
			"estado":    p.Estado,
		}))
	}
}

// ── Lectura ──────────────────────────────────────────────────────────────────

func (s *pedidoService) visible(ctx context.Context, actor Actor, id uuid.UUID) (*model.Pedido, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "pedido no encontrado")
	}
	if !esParte(actor, p) && !actor.EsAdmin() {
		return nil, noAutorizado("no participa de este pedido")
	}
	return p, nil
}

func (s *pedidoService) ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.PedidoResponse, error) {
	p, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := mapPedido(p)
	return &resp, nil
}

func (s *pedidoService) Listar(ctx context.Context, actor Actor, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	var scope repository.PedidoScope
	switch {
	case actor.EsAdmin():
	case actor.EsTaller():
		scope.TallerID = &actor.ID
	case actor.EsProveedor():
		scope.ProveedorID = &actor.ID
	default:
		return nil, noAutorizado("rol desconocido")
	}
	filter.Normalize()

	list, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PedidoResponse, 0, len(list))
	for i := range list {
		data = append(data, mapPedido(&list[i]))
	}
	return &dto.PedidoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: dto.TotalPages(total, filter.Limit),
	}, nil
}

// GenerarPDF renders the order slip for either party or an administrador.
func (s *pedidoService) GenerarPDF(ctx context.Context, actor Actor, id uuid.UUID) ([]byte, error) {
	p, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	oferta, err := s.ofertas.FindByID(ctx, p.OfertaID)
	if err != nil {
		return nil, fmt.Errorf("pedido %s: oferta: %w", p.ID, err)
	}

	slip := infra.PedidoSlip{Pedido: p, Items: oferta.Items}
	if t, err := s.talleres.FindByID(ctx, p.TallerID); err == nil {
		slip.Taller = t.Nombre
	}
	if pr, err := s.proveedores.FindByID(ctx, p.ProveedorID); err == nil {
		slip.Proveedor = pr.RazonSocial
	}
	if c, err := s.cotizaciones.FindByID(ctx, p.CotizacionID); err == nil {
		slip.Titulo = c.Titulo
		slip.Vehiculo = fmt.Sprintf("%s %s %d", c.VehiculoMarca, c.VehiculoModelo, c.VehiculoAnio)
	}

	pdf, err := infra.GeneratePedidoPDF(slip)
	if err != nil {
		log.Error().Err(err).Str("pedido_id", p.ID.String()).Msg("pdf generation failed")
		return nil, err
	}
	return pdf, nil
}
