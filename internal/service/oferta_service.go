package service

import (
	"context"
	"errors"
	"strings"

	"findautopart/internal/dto"
	"findautopart/internal/model"
	"findautopart/internal/repository"
	"findautopart/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// precioMaximo is the largest value the DECIMAL(14,2) precio_unitario column holds.
var precioMaximo = decimal.RequireFromString("999999999999.99")

type OfertaService interface {
	Crear(ctx context.Context, proveedorID, cotizacionID uuid.UUID, req dto.CrearOfertaRequest) (*dto.OfertaResponse, error)
	ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OfertaResponse, error)
	ListarPorCotizacion(ctx context.Context, actor Actor, cotizacionID uuid.UUID) ([]dto.OfertaResponse, error)
	ListarMias(ctx context.Context, proveedorID uuid.UUID, page, limit int) ([]dto.OfertaResponse, int64, error)
	// Ranking returns the best-offer order and the price-only comparison.
	Ranking(ctx context.Context, actor Actor, cotizacionID uuid.UUID) (*dto.RankingResponse, error)
}

type ofertaService struct {
	repo         repository.OfertaRepository
	cotizaciones repository.CotizacionRepository
	proveedores  repository.ProveedorRepository
	notif        Notificador
}

func NewOfertaService(
	repo repository.OfertaRepository,
	cotizaciones repository.CotizacionRepository,
	proveedores repository.ProveedorRepository,
	notif Notificador,
) OfertaService {
	return &ofertaService{repo: repo, cotizaciones: cotizaciones, proveedores: proveedores, notif: notif}
}

func validarOferta(req dto.CrearOfertaRequest) error {
	if req.DiasEntrega < 0 {
		return validacion("los días de entrega no pueden ser negativos")
	}
	if len(req.Items) == 0 {
		return validacion("la oferta debe tener al menos un ítem")
	}
	total := decimal.Zero
	for i, it := range req.Items {
		switch {
		case strings.TrimSpace(it.Nombre) == "":
			return validacion("ítem %d: el nombre es obligatorio", i+1)
		case it.Cantidad < 1:
			return validacion("ítem %d: la cantidad debe ser mayor a cero", i+1)
		case it.PrecioUnitario.IsNegative():
			return validacion("ítem %d: el precio no puede ser negativo", i+1)
		case !it.PrecioUnitario.Equal(it.PrecioUnitario.Round(2)):
			return validacion("ítem %d: el precio admite como máximo dos decimales", i+1)
		case it.PrecioUnitario.GreaterThan(precioMaximo):
			return validacion("ítem %d: el precio excede el máximo permitido", i+1)
		}
		total = total.Add(it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad))))
	}
	// The order total lands in a DECIMAL(14,2) column too.
	if total.GreaterThan(precioMaximo) {
		return validacion("el total de la oferta excede el máximo permitido")
	}
	return nil
}

// validarReferencias checks that every back-reference points at an item of cot.
func validarReferencias(req dto.CrearOfertaRequest, cot *model.Cotizacion) error {
	items := make(map[uuid.UUID]bool, len(cot.Items))
	for _, it := range cot.Items {
		items[it.ID] = true
	}
	for i, it := range req.Items {
		if it.CotizacionItemID != nil && !items[*it.CotizacionItemID] {
			return validacion("ítem %d: no corresponde a un ítem de la cotización", i+1)
		}
	}
	return nil
}

// Crear validates input first, then inside a transaction holds the cotización
// FOR SHARE while checking it is abierta and inserting. The unique index on
// (cotizacion_id, proveedor_id) is the final guard against concurrent duplicates.
func (s *ofertaService) Crear(ctx context.Context, proveedorID, cotizacionID uuid.UUID, req dto.CrearOfertaRequest) (*dto.OfertaResponse, error) {
	if err := validarOferta(req); err != nil {
		return nil, err
	}

	prov, err := s.proveedores.FindByID(ctx, proveedorID)
	if err != nil {
		return nil, siNoExiste(err, "proveedor no encontrado")
	}
	if !prov.Activo {
		return nil, noAutorizado("el proveedor está inactivo")
	}

	cot, err := s.cotizaciones.FindByID(ctx, cotizacionID)
	if err != nil {
		return nil, siNoExiste(err, "cotización no encontrada")
	}
	if err := validarReferencias(req, cot); err != nil {
		return nil, err
	}

	o := &model.Oferta{
		ID:           uuid.New(),
		CotizacionID: cotizacionID,
		ProveedorID:  proveedorID,
		DiasEntrega:  req.DiasEntrega,
		Comentarios:  req.Comentarios,
	}
	for i, it := range req.Items {
		disponible := it.Disponible == nil || *it.Disponible
		o.Items = append(o.Items, model.OfertaItem{
			ID:               uuid.New(),
			OfertaID:         o.ID,
			Posicion:         i + 1,
			CotizacionItemID: it.CotizacionItemID,
			Nombre:           strings.TrimSpace(it.Nombre),
			Marca:            it.Marca,
			Cantidad:         it.Cantidad,
			PrecioUnitario:   it.PrecioUnitario,
			Disponible:       disponible,
			Nota:             it.Nota,
		})
	}

	err = runTx(ctx, s.cotizaciones.DB(), func(tx *gorm.DB) error {
		locked, err := s.cotizaciones.FindByIDLocked(ctx, tx, cotizacionID, repository.BloqueoCompartido)
		if err != nil {
			return siNoExiste(err, "cotización no encontrada")
		}
		if locked.Estado != model.CotizacionAbierta {
			return conflicto("%s", msgNoAbierta)
		}
		existe, err := s.repo.ExistePorProveedor(ctx, tx, cotizacionID, proveedorID)
		if err != nil {
			return err
		}
		if existe {
			return conflicto("%s", msgOfertaDuplicada)
		}
		if err := s.repo.Create(ctx, tx, o); err != nil {
			if errors.Is(err, repository.ErrDuplicado) {
				return conflicto("%s", msgOfertaDuplicada)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.Proveedor = prov

	notificar(ctx, s.notif, aUsuario(cot.TallerID.String(), worker.EventoOfertaCreada, map[string]interface{}{
		"cotizacion_id": cotizacionID.String(),
		"oferta_id":     o.ID.String(),
		"proveedor":     prov.RazonSocial,
	}))

	resp := mapOferta(ResumirOferta(o))
	return &resp, nil
}

// puedeVerOfertas: the owning taller and administradores see every oferta.
func puedeVerOfertas(actor Actor, cot *model.Cotizacion) bool {
	return actor.EsAdmin() || (actor.EsTaller() && cot.TallerID == actor.ID)
}

func (s *ofertaService) ObtenerPorID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OfertaResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "oferta no encontrada")
	}
	if !(actor.EsProveedor() && o.ProveedorID == actor.ID) {
		cot, err := s.cotizaciones.FindByID(ctx, o.CotizacionID)
		if err != nil {
			return nil, siNoExiste(err, "cotización no encontrada")
		}
		if !puedeVerOfertas(actor, cot) {
			return nil, noAutorizado("no tiene acceso a esta oferta")
		}
	}
	resp := mapOferta(ResumirOferta(o))
	return &resp, nil
}

func (s *ofertaService) ListarPorCotizacion(ctx context.Context, actor Actor, cotizacionID uuid.UUID) ([]dto.OfertaResponse, error) {
	cot, err := s.cotizaciones.FindByID(ctx, cotizacionID)
	if err != nil {
		return nil, siNoExiste(err, "cotización no encontrada")
	}
	soloPropias := actor.EsProveedor()
	if !soloPropias && !puedeVerOfertas(actor, cot) {
		return nil, noAutorizado("no tiene acceso a las ofertas de esta cotización")
	}

	list, err := s.repo.ListByCotizacion(ctx, cotizacionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OfertaResponse, 0, len(list))
	for i := range list {
		if soloPropias && list[i].ProveedorID != actor.ID {
			continue
		}
		out = append(out, mapOferta(ResumirOferta(&list[i])))
	}
	return out, nil
}

func (s *ofertaService) ListarMias(ctx context.Context, proveedorID uuid.UUID, page, limit int) ([]dto.OfertaResponse, int64, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	list, total, err := s.repo.ListByProveedor(ctx, proveedorID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.OfertaResponse, 0, len(list))
	for i := range list {
		out = append(out, mapOferta(ResumirOferta(&list[i])))
	}
	return out, total, nil
}

func (s *ofertaService) Ranking(ctx context.Context, actor Actor, cotizacionID uuid.UUID) (*dto.RankingResponse, error) {
	cot, err := s.cotizaciones.FindByID(ctx, cotizacionID)
	if err != nil {
		return nil, siNoExiste(err, "cotización no encontrada")
	}
	if !puedeVerOfertas(actor, cot) {
		return nil, noAutorizado("solo el taller dueño puede comparar ofertas")
	}

	list, err := s.repo.ListByCotizacion(ctx, cotizacionID)
	if err != nil {
		return nil, err
	}
	mejor := make([]OfertaResumen, len(list))
	for i := range list {
		mejor[i] = ResumirOferta(&list[i])
	}
	precio := make([]OfertaResumen, len(mejor))
	copy(precio, mejor)

	OrdenarMejorOferta(mejor)
	OrdenarPorPrecio(precio)

	resp := &dto.RankingResponse{
		CotizacionID: cotizacionID,
		Ofertas:      make([]dto.OfertaResponse, 0, len(mejor)),
		Comparativa:  make([]dto.OfertaResponse, 0, len(precio)),
	}
	for _, r := range mejor {
		resp.Ofertas = append(resp.Ofertas, mapOferta(r))
	}
	for _, r := range precio {
		resp.Comparativa = append(resp.Comparativa, mapOferta(r))
	}
	if len(mejor) > 0 {
		id := mejor[0].Oferta.ID
		resp.MejorOfertaID = &id
	}
	return resp, nil
}
