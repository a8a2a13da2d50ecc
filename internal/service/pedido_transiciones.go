package service

import (
	"findautopart/internal/model"
)

// ── Pedido state machine ─────────────────────────────────────────────────────
//
//	pendiente ──proveedor──▶ confirmado ──taller──▶ entregado
//	    │                        │
//	    └──── taller | proveedor | administrador ──▶ cancelado
//
// The partition is by rol, not only ownership: the proveedor can never mark a
// pedido entregado and the taller can never confirm it.

// transicionesPorRol maps rol → target estado → required current estado.
var transicionesPorRol = map[string]map[string]string{
	model.RolProveedor: {model.PedidoConfirmado: model.PedidoPendiente},
	model.RolTaller:    {model.PedidoEntregado: model.PedidoConfirmado},
}

// cancelables are the estados a pedido may be cancelled from.
var cancelables = map[string]bool{
	model.PedidoPendiente:  true,
	model.PedidoConfirmado: true,
}

func estadoPedidoValido(e string) bool {
	switch e {
	case model.PedidoPendiente, model.PedidoConfirmado, model.PedidoEntregado, model.PedidoCancelado:
		return true
	}
	return false
}

// esParte reports whether actor is the taller or the proveedor of p.
func esParte(actor Actor, p *model.Pedido) bool {
	return (actor.EsTaller() && p.TallerID == actor.ID) ||
		(actor.EsProveedor() && p.ProveedorID == actor.ID)
}

// autorizarTransicion checks a non-cancel status change and returns the estado
// the pedido must currently be in. Role violations are checked before the
// current estado, so they fail the same way whatever state the pedido is in.
func autorizarTransicion(actor Actor, p *model.Pedido, hacia string) (string, error) {
	if !esParte(actor, p) {
		return "", noAutorizado("no participa de este pedido")
	}
	desde, ok := transicionesPorRol[actor.Rol][hacia]
	if !ok {
		return "", noAutorizado("el rol %s no puede pasar un pedido a %s", actor.Rol, hacia)
	}
	if p.Estado != desde {
		return "", conflicto("transición inválida: %s → %s", p.Estado, hacia)
	}
	return desde, nil
}

// autorizarCancelacion: either party or an administrador, only from pendiente/confirmado.
func autorizarCancelacion(actor Actor, p *model.Pedido) error {
	if !esParte(actor, p) && !actor.EsAdmin() {
		return noAutorizado("no participa de este pedido")
	}
	if !cancelables[p.Estado] {
		return conflicto("el pedido está %s y no puede cancelarse", p.Estado)
	}
	return nil
}

// contraparte returns the usuario ids to notify after actor changed p.
func contraparte(actor Actor, p *model.Pedido) []string {
	switch {
	case actor.EsTaller() && p.TallerID == actor.ID:
		return []string{p.ProveedorID.String()}
	case actor.EsProveedor() && p.ProveedorID == actor.ID:
		return []string{p.TallerID.String()}
	}
	return []string{p.TallerID.String(), p.ProveedorID.String()}
}
