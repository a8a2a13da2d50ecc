package worker

import "time"

// Notification target kinds.
const (
	DestinoUsuario   = "usuario"
	DestinoRol       = "rol"
	DestinoBroadcast = "broadcast"
)

// Event names published to clients.
const (
	EventoCotizacionCreada    = "cotizacion.creada"
	EventoCotizacionCerrada   = "cotizacion.cerrada"
	EventoCotizacionCancelada = "cotizacion.cancelada"
	EventoOfertaCreada        = "oferta.creada"
	EventoPedidoCreado        = "pedido.creado"
	EventoPedidoEstado        = "pedido.estado"
)

// Notificacion is the job payload of QueueNotificaciones: "notify entity X of
// event Y". Destino is a usuario id, a rol name, or empty for broadcast.
type Notificacion struct {
	TipoDestino string                 `json:"tipo_destino"`
	Destino     string                 `json:"destino,omitempty"`
	Evento      string                 `json:"evento"`
	Datos       map[string]interface{} `json:"datos,omitempty"`
	CreadaAt    time.Time              `json:"creada_at"`
}
