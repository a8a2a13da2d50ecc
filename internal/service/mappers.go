package service

import (
	"context"

	"findautopart/internal/dto"
	"findautopart/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func mapCotizacion(ctx context.Context, f FirmadorURL, c *model.Cotizacion) dto.CotizacionResponse {
	resp := dto.CotizacionResponse{
		ID:              c.ID,
		TallerID:        c.TallerID,
		Titulo:          c.Titulo,
		VehiculoMarca:   c.VehiculoMarca,
		VehiculoModelo:  c.VehiculoModelo,
		VehiculoAnio:    c.VehiculoAnio,
		VehiculoPatente: c.VehiculoPatente,
		Categoria:       c.Categoria,
		Descripcion:     c.Descripcion,
		Estado:          c.Estado,
		CreatedAt:       c.CreatedAt,
		ClosedAt:        c.ClosedAt,
		Items:           make([]dto.CotizacionItemResponse, 0, len(c.Items)),
	}
	if c.Taller != nil {
		resp.TallerNombre = c.Taller.Nombre
		resp.Region = c.Taller.Region
	}
	for _, it := range c.Items {
		item := dto.CotizacionItemResponse{
			ID:          it.ID,
			Posicion:    it.Posicion,
			Codigo:      it.Codigo,
			Nombre:      it.Nombre,
			Descripcion: it.Descripcion,
			Marca:       it.Marca,
			Cantidad:    it.Cantidad,
		}
		if it.ImagenKey != nil && *it.ImagenKey != "" {
			item.ImagenKey = it.ImagenKey
		}
		// The key is always returned; the signed URL only when a signer is available.
		if item.ImagenKey != nil && f != nil {
			url, err := f.SignForRead(ctx, *it.ImagenKey)
			if err != nil {
				log.Warn().Err(err).Str("key", *it.ImagenKey).Msg("no se pudo firmar la imagen")
			} else {
				item.ImagenURL = &url
			}
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func mapOferta(r OfertaResumen) dto.OfertaResponse {
	o := r.Oferta
	resp := dto.OfertaResponse{
		ID:               o.ID,
		CotizacionID:     o.CotizacionID,
		ProveedorID:      o.ProveedorID,
		DiasEntrega:      o.DiasEntrega,
		Comentarios:      o.Comentarios,
		Total:            r.Total,
		ItemsDisponibles: r.ItemsDisponibles,
		ItemsTotales:     r.ItemsTotales,
		Cobertura:        r.Cobertura(),
		CreatedAt:        o.CreatedAt,
		Items:            make([]dto.OfertaItemResponse, 0, len(o.Items)),
	}
	if o.Proveedor != nil {
		resp.ProveedorNombre = o.Proveedor.RazonSocial
	}
	for _, it := range o.Items {
		sub := decimal.Zero
		if it.Disponible {
			sub = it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		}
		resp.Items = append(resp.Items, dto.OfertaItemResponse{
			ID:               it.ID,
			Posicion:         it.Posicion,
			CotizacionItemID: it.CotizacionItemID,
			Nombre:           it.Nombre,
			Marca:            it.Marca,
			Cantidad:         it.Cantidad,
			PrecioUnitario:   it.PrecioUnitario,
			Subtotal:         sub,
			Disponible:       it.Disponible,
			Nota:             it.Nota,
		})
	}
	return resp
}

func mapPedido(p *model.Pedido) dto.PedidoResponse {
	return dto.PedidoResponse{
		ID:                   p.ID,
		CotizacionID:         p.CotizacionID,
		OfertaID:             p.OfertaID,
		TallerID:             p.TallerID,
		ProveedorID:          p.ProveedorID,
		Total:                p.Total,
		DireccionEntrega:     p.DireccionEntrega,
		Notas:                p.Notas,
		Estado:               p.Estado,
		FechaEntregaEstimada: p.FechaEntregaEstimada,
		EntregadoAt:          p.EntregadoAt,
		CanceladoPor:         p.CanceladoPor,
		MotivoCancelacion:    p.MotivoCancelacion,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func mapUsuario(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Nombre:   u.Nombre,
		Email:    u.Email,
		Rol:      u.Rol,
		Activo:   u.Activo,
	}
}
