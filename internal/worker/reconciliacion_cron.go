package worker

// reconciliacion_cron.go
// Scheduled job that closes any cotización still abierta although a pedido
// references it. Pedido creation closes the cotización in the same
// transaction, so this normally finds nothing; it repairs rows touched by
// manual fixes or partial restores.

import (
	"context"
	"time"

	"findautopart/internal/model"
	"findautopart/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const reconciliacionBatchSize = 50

type ReconciliacionCron struct {
	pedidos      repository.PedidoRepository
	cotizaciones repository.CotizacionRepository
}

func NewReconciliacionCron(pedidos repository.PedidoRepository, cotizaciones repository.CotizacionRepository) *ReconciliacionCron {
	return &ReconciliacionCron{pedidos: pedidos, cotizaciones: cotizaciones}
}

// Start schedules the job with spec (robfig/cron syntax, e.g. "@every 1m")
// and stops it when ctx is cancelled.
func (r *ReconciliacionCron) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() { r.Run(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("schedule", spec).Msg("reconciliacion_cron: started")

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		log.Info().Msg("reconciliacion_cron: stopped")
	}()
	return c, nil
}

// Run performs one pass and returns how many cotizaciones were closed.
func (r *ReconciliacionCron) Run(ctx context.Context) int {
	pedidos, err := r.pedidos.ListConCotizacionAbierta(ctx, reconciliacionBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("reconciliacion_cron: query failed")
		return 0
	}
	cerradas := 0
	for _, p := range pedidos {
		closedAt := p.CreatedAt
		if closedAt.IsZero() {
			closedAt = time.Now()
		}
		ok, err := r.cotizaciones.CambiarEstado(ctx, nil, p.CotizacionID, model.CotizacionAbierta, model.CotizacionCerrada, &closedAt)
		if err != nil {
			log.Error().Err(err).Str("cotizacion_id", p.CotizacionID.String()).Msg("reconciliacion_cron: close failed")
			continue
		}
		if ok {
			cerradas++
			log.Warn().
				Str("cotizacion_id", p.CotizacionID.String()).
				Str("pedido_id", p.ID.String()).
				Msg("reconciliacion_cron: cotización con pedido estaba abierta, cerrada")
		}
	}
	return cerradas
}
