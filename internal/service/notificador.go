package service

import (
	"context"
	"time"

	"findautopart/internal/worker"

	"github.com/rs/zerolog/log"
)

// Notificador enqueues fire-and-forget notifications (worker.Dispatcher).
type Notificador interface {
	EnqueueNotificacion(ctx context.Context, n worker.Notificacion) error
}

// FirmadorURL signs blob keys for read (infra.BlobStore).
type FirmadorURL interface {
	SignForRead(ctx context.Context, key string) (string, error)
}

const notificacionTimeout = 5 * time.Second

// notificar enqueues n without blocking the caller. The context is detached
// from the request so the enqueue survives the response being written.
// Failures are logged and never reach the caller.
func notificar(ctx context.Context, nt Notificador, n worker.Notificacion) {
	if nt == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(base, notificacionTimeout)
		defer cancel()
		if err := nt.EnqueueNotificacion(ctx, n); err != nil {
			log.Warn().Err(err).
				Str("evento", n.Evento).
				Str("tipo_destino", n.TipoDestino).
				Str("destino", n.Destino).
				Msg("notificación descartada")
		}
	}()
}

func aUsuario(id string, evento string, datos map[string]interface{}) worker.Notificacion {
	return worker.Notificacion{TipoDestino: worker.DestinoUsuario, Destino: id, Evento: evento, Datos: datos}
}

func aRol(rol string, evento string, datos map[string]interface{}) worker.Notificacion {
	return worker.Notificacion{TipoDestino: worker.DestinoRol, Destino: rol, Evento: evento, Datos: datos}
}
