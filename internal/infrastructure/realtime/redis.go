package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/notification"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/pkg/config"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

var _ notification.Publisher = (*RedisBroker)(nil)

// NewRedisClient abre el cliente y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// RedisBroker difunde notificaciones entre instancias por pub/sub.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *logger.Logger
}

// NewRedisBroker construye el broker sobre un cliente ya conectado.
func NewRedisBroker(client *redis.Client, channel string, hub *Hub, log *logger.Logger) *RedisBroker {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisBroker{client: client, channel: channel, hub: hub, log: log}
}

// Publish envía la notificación al canal; cada instancia suscrita la entrega a sus clientes.
func (b *RedisBroker) Publish(ctx context.Context, n *entity.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Run se suscribe al canal y reenvía al hub local hasta que ctx termina.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis: subscribe %s: %w", b.channel, err)
	}
	b.log.Info().Str("channel", b.channel).Msg("suscrito a notificaciones")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var n entity.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.log.Warn().Err(err).Msg("notificación inválida en redis")
				continue
			}
			b.hub.Deliver(&n)
		}
	}
}
