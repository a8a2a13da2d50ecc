package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"findautopart/internal/infra"
	"findautopart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PushPublisher publishes on a real-time channel (infra.PushPublisher).
type PushPublisher interface {
	Publish(ctx context.Context, canal string, payload interface{}) (int64, error)
}

// TopicPublisher mirrors events to a fan-out topic (infra.SNSPublisher).
type TopicPublisher interface {
	Publish(ctx context.Context, evento string, payload interface{}) error
}

// MailSender sends a plain-text email (infra.Mailer).
type MailSender interface {
	Send(to, subject, body string) error
}

// UsuarioLookup resolves a usuario for email delivery.
type UsuarioLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
}

// Breakers holds one circuit breaker per secondary channel so an outage on one
// never suppresses the other. Nil fields get the default configuration.
type Breakers struct {
	SNS   *infra.CircuitBreaker
	Email *infra.CircuitBreaker
}

// NotificacionWorker delivers QueueNotificaciones jobs. Redis Pub/Sub is the
// primary channel and its failure makes the job retry; SNS and email are
// secondary and only logged.
type NotificacionWorker struct {
	push     PushPublisher
	topic    TopicPublisher
	mailer   MailSender
	usuarios UsuarioLookup
	cbs      Breakers
}

// NewNotificacionWorker wires the channels. topic, mailer and usuarios may be nil.
func NewNotificacionWorker(push PushPublisher, topic TopicPublisher, mailer MailSender, usuarios UsuarioLookup, cbs Breakers) *NotificacionWorker {
	if cbs.SNS == nil {
		cbs.SNS = infra.NewCircuitBreaker(infra.DefaultCBConfig("sns"))
	}
	if cbs.Email == nil {
		cbs.Email = infra.NewCircuitBreaker(infra.DefaultCBConfig("email"))
	}
	return &NotificacionWorker{push: push, topic: topic, mailer: mailer, usuarios: usuarios, cbs: cbs}
}

func (w *NotificacionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var n Notificacion
	if err := json.Unmarshal(raw, &n); err != nil {
		// Malformed payloads will never succeed; drop instead of retrying.
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		return nil
	}

	canal := infra.Canal(n.TipoDestino, n.Destino)
	receivers, err := w.push.Publish(ctx, canal, n)
	if err != nil {
		return fmt.Errorf("publish %s: %w", canal, err)
	}
	log.Debug().Str("canal", canal).Str("evento", n.Evento).Int64("receivers", receivers).Msg("notificacion publicada")

	switch n.TipoDestino {
	case DestinoRol, DestinoBroadcast:
		w.espejarTopic(ctx, n)
	case DestinoUsuario:
		if strings.HasPrefix(n.Evento, "pedido.") {
			w.enviarEmail(ctx, n)
		}
	}
	return nil
}

func (w *NotificacionWorker) espejarTopic(ctx context.Context, n Notificacion) {
	if w.topic == nil {
		return
	}
	err := w.cbs.SNS.Execute(func() error { return w.topic.Publish(ctx, n.Evento, n) })
	if err != nil {
		log.Warn().Err(err).Str("evento", n.Evento).Msg("notificacion_worker: sns mirror failed")
	}
}

func (w *NotificacionWorker) enviarEmail(ctx context.Context, n Notificacion) {
	if w.mailer == nil || w.usuarios == nil {
		return
	}
	id, err := uuid.Parse(n.Destino)
	if err != nil {
		return
	}
	u, err := w.usuarios.FindByID(ctx, id)
	if err != nil || u.Email == nil || *u.Email == "" {
		return
	}
	subject, body := textoEmail(n)
	err = w.cbs.Email.Execute(func() error { return w.mailer.Send(*u.Email, subject, body) })
	if err != nil {
		log.Warn().Err(err).Str("usuario_id", n.Destino).Str("evento", n.Evento).Msg("notificacion_worker: email failed")
	}
}

func textoEmail(n Notificacion) (string, string) {
	pedido, _ := n.Datos["pedido_id"].(string)
	switch n.Evento {
	case EventoPedidoCreado:
		return "Nuevo pedido recibido", fmt.Sprintf("Recibiste un nuevo pedido (%s). Ingresá a FindAutoPart para confirmarlo.", pedido)
	case EventoPedidoEstado:
		estado, _ := n.Datos["estado"].(string)
		return "Actualización de pedido", fmt.Sprintf("El pedido %s cambió a estado %s.", pedido, estado)
	}
	return "Notificación FindAutoPart", "Tenés una nueva notificación: " + n.Evento
}
