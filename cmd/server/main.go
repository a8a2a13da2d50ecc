package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"findautopart/internal/config"
	"findautopart/internal/infra"
	"findautopart/internal/repository"
	"findautopart/internal/router"
	"findautopart/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AWS is optional: without a bucket images are returned unsigned, without
	// a topic the SNS mirror is off.
	var blobs *infra.BlobStore
	var topic worker.TopicPublisher
	if cfg.S3Bucket != "" || cfg.SNSTopicARN != "" {
		awsCfg, err := infra.LoadAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			log.Warn().Err(err).Msg("aws unavailable; image uploads and SNS disabled")
		} else {
			if cfg.S3Bucket != "" {
				blobs = infra.NewBlobStore(awsCfg, cfg.AWSEndpoint, cfg.S3Bucket, cfg.S3URLTTLSeconds)
			}
			if cfg.SNSTopicARN != "" {
				topic = infra.NewSNSPublisher(awsCfg, cfg.AWSEndpoint, cfg.SNSTopicARN)
			}
		}
	} else {
		log.Info().Msg("S3_BUCKET and SNS_TOPIC_ARN not set; image uploads and SNS disabled")
	}

	mailer, err := infra.NewMailer(cfg, cfg.WorkerPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SMTP configuration")
	}
	defer mailer.Close()
	var mail worker.MailSender
	if mailer.Enabled() {
		mail = mailer
	}

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	cbs := worker.Breakers{
		SNS:   infra.NewCircuitBreaker(infra.DefaultCBConfig("sns")),
		Email: infra.NewCircuitBreaker(infra.DefaultCBConfig("email")),
	}
	usuarioRepo := repository.NewUsuarioRepository(db)
	pool := worker.NewPool(rdb)
	pool.HandleNotificaciones(worker.NewNotificacionWorker(infra.NewPushPublisher(rdb), topic, mail, usuarioRepo, cbs))
	pool.Start(ctx, cfg.WorkerPoolSize)

	reconciliacion := worker.NewReconciliacionCron(repository.NewPedidoRepository(db), repository.NewCotizacionRepository(db))
	if _, err := reconciliacion.Start(ctx, cfg.ReconciliacionCron); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.ReconciliacionCron).Msg("invalid RECONCILIACION_CRON")
	}

	r := router.New(cfg, db, rdb, blobs, cbs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("findautopart backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	// Stops the worker pool and the reconciliación schedule.
	cancel()
	log.Info().Msg("server exited")
}
