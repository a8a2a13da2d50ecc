package infra

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// CanalPrefix is the Pub/Sub namespace the real-time gateway subscribes to.
const CanalPrefix = "notificaciones:"

// PushPublisher publishes real-time events on Redis Pub/Sub. The websocket
// gateway (outside this service) fans them out to connected clients.
type PushPublisher struct {
	rdb *redis.Client
}

func NewPushPublisher(rdb *redis.Client) *PushPublisher {
	return &PushPublisher{rdb: rdb}
}

// Canal builds the channel name: notificaciones:broadcast, notificaciones:rol:proveedor,
// notificaciones:usuario:<uuid>.
func Canal(tipoDestino, destino string) string {
	if destino == "" {
		return CanalPrefix + tipoDestino
	}
	return CanalPrefix + tipoDestino + ":" + destino
}

// Publish marshals payload and publishes it on canal. It returns the number of
// subscribers that received the message.
func (p *PushPublisher) Publish(ctx context.Context, canal string, payload interface{}) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("push: marshal: %w", err)
	}
	return p.rdb.Publish(ctx, canal, data).Result()
}
