package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// RedisRelay mirrors events between instances over a pub/sub channel.
// Its Notify publishes the event for the other instances; a consumer
// goroutine re-broadcasts remote events into the local sink. Events
// published by this instance are filtered out on receive.
type RedisRelay struct {
	client     *redis.Client
	channel    string
	instanceID string
	local      ports.Notifier
	logger     *zap.SugaredLogger

	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
}

type relayEnvelope struct {
	InstanceID string       `json:"instance_id"`
	Event      domain.Event `json:"event"`
}

// NewRedisRelay builds a relay publishing under keyPrefix. Remote
// events are delivered to local, normally the WebSocket hub.
func NewRedisRelay(client *redis.Client, keyPrefix string, local ports.Notifier, logger *zap.SugaredLogger) *RedisRelay {
	return &RedisRelay{
		client:     client,
		channel:    keyPrefix + "events",
		instanceID: utils.GenerateInstanceID(),
		local:      local,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start subscribes to the relay channel and launches the consumer. It
// returns once the subscription is confirmed.
func (r *RedisRelay) Start(ctx context.Context) error {
	if r.pubsub != nil {
		return fmt.Errorf("event relay already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	pubsub := r.client.Subscribe(runCtx, r.channel)
	if _, err := pubsub.Receive(runCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	r.pubsub = pubsub
	r.cancel = cancel
	go r.consume(runCtx)

	r.logger.Infow("event relay started", "channel", r.channel, "instance_id", r.instanceID)
	return nil
}

// Notify implements ports.Notifier. Publish failures are logged and
// swallowed; local delivery never depends on redis being up.
func (r *RedisRelay) Notify(event domain.Event) {
	data, err := json.Marshal(relayEnvelope{InstanceID: r.instanceID, Event: event})
	if err != nil {
		r.logger.Errorw("failed to marshal relay envelope", "type", event.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.Warnw("failed to relay event", "type", event.Type, "error", err)
	}
}

// Close stops the consumer and waits for it to drain.
func (r *RedisRelay) Close() error {
	if r.pubsub == nil {
		return nil
	}

	r.cancel()
	err := r.pubsub.Close()
	<-r.done

	r.logger.Infow("event relay stopped", "instance_id", r.instanceID)
	return err
}

func (r *RedisRelay) consume(ctx context.Context) {
	defer close(r.done)

	ch := r.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.logger.Warnw("failed to decode relayed event", "error", err)
				continue
			}
			if env.InstanceID == r.instanceID {
				continue
			}

			r.logger.Debugw("received relayed event",
				"type", env.Event.Type,
				"from_instance", env.InstanceID)
			r.local.Notify(env.Event)
		}
	}
}
