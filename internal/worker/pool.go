package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueNotificaciones = "jobs:notificaciones"

const (
	jobTypeNotificacion = "notificacion"
	maxAttempts         = 3
)

// Job is the envelope stored in the Redis list.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// Handler processes one job payload. A returned error makes the pool retry.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueNotificacion pushes a notification job. Callers treat errors as
// non-fatal: a lost notification never undoes a state transition.
func (d *Dispatcher) EnqueueNotificacion(ctx context.Context, n Notificacion) error {
	if n.CreadaAt.IsZero() {
		n.CreadaAt = time.Now().UTC()
	}
	return d.enqueue(ctx, QueueNotificaciones, jobTypeNotificacion, n)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	backoff  func(attempt int) time.Duration
	dlq      func(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int)
}

func NewPool(rdb *redis.Client) *Pool {
	p := &Pool{
		rdb:      rdb,
		handlers: make(map[string]Handler),
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt*attempt) * time.Second },
	}
	p.dlq = func(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
		SendToDLQ(ctx, p.rdb, queue, jobType, payload, reason, attempts)
	}
	return p
}

// Handle registers h for jobs of jobType.
func (p *Pool) Handle(jobType string, h Handler) { p.handlers[jobType] = h }

// HandleNotificaciones registers the notification handler.
func (p *Pool) HandleNotificaciones(h Handler) { p.Handle(jobTypeNotificacion, h) }

// Start launches numWorkers goroutines consuming QueueNotificaciones.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{QueueNotificaciones}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

// process runs the handler with retries. Exhausted jobs go to the DLQ.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		p.dlq(ctx, queue, "desconocido", json.RawMessage(fmt.Sprintf("%q", raw)), "unmarshal: "+err.Error(), 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		p.dlq(ctx, queue, job.Type, job.Payload, "sin handler", job.Attempts)
		return
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = h.Process(ctx, job.Payload); err == nil {
			return
		}
		log.Warn().Err(err).Str("type", job.Type).Int("attempt", attempt).Msg("job failed")
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			// Shutdown mid-backoff: park the job instead of dropping it.
			dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			p.dlq(dctx, queue, job.Type, job.Payload, "interrumpido: "+err.Error(), job.Attempts+attempt)
			return
		case <-time.After(p.backoff(attempt)):
		}
	}
	p.dlq(ctx, queue, job.Type, job.Payload, err.Error(), job.Attempts+maxAttempts)
}
