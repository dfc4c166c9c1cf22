package redisbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hiperdesk/backend/internal/config"
	"github.com/hiperdesk/backend/internal/core/domain"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// eventsChannel is the redis pub/sub channel shared by all nodes.
const eventsChannel = "hiperdesk:ticket-events"

// envelope is the wire form of one fanout publication. OriginID lets a
// node skip the copies of its own events coming back from redis.
type envelope struct {
	OriginID string             `json:"originId"`
	Event    domain.TicketEvent `json:"event"`
	Topics   []string           `json:"topics"`
}

// Bridge mirrors ticket events across nodes through redis pub/sub. As a
// ports.Broadcaster it publishes local events to redis; Run subscribes
// and replays remote events into the local hub, preserving arrival order
// (redis pub/sub delivers a publisher's messages in order).
type Bridge struct {
	client   *redis.Client
	local    ports.Broadcaster
	originID string
	logger   *slog.Logger
}

var _ ports.Broadcaster = (*Bridge)(nil)

// New connects to redis and returns the bridge. The local broadcaster
// receives events replayed from other nodes.
func New(cfg config.RedisConfig, local ports.Broadcaster, logger *slog.Logger) (*Bridge, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Bridge{
		client:   client,
		local:    local,
		originID: uuid.New().String(),
		logger:   logger.With("component", "redis_bridge"),
	}, nil
}

// Publish forwards the event to the shared redis channel.
func (b *Bridge) Publish(event domain.TicketEvent, topics []string) error {
	payload, err := json.Marshal(envelope{
		OriginID: b.originID,
		Event:    event,
		Topics:   topics,
	})
	if err != nil {
		return fmt.Errorf("encode event envelope: %w", err)
	}
	if err := b.client.Publish(context.Background(), eventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

// Run consumes the shared channel and replays remote events into the
// local hub until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, eventsChannel)
	defer sub.Close()

	b.logger.Info("redis bridge started", "channel", eventsChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.replay(msg.Payload)
		}
	}
}

func (b *Bridge) replay(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.logger.Warn("dropping malformed bridge event", "error", err)
		return
	}
	if env.OriginID == b.originID {
		return
	}
	if err := b.local.Publish(env.Event, env.Topics); err != nil {
		b.logger.Warn("failed to replay bridge event",
			"ticket_id", env.Event.TicketID,
			"error", err,
		)
	}
}

// Close releases the redis connection.
func (b *Bridge) Close() error {
	return b.client.Close()
}
