package redis

import (
	"context"
	"encoding/json"

	"go-weave/internal/domain"
	"go-weave/internal/log"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	stageChannel      = "ingest:events:stage"
	dispatchedChannel = "workflow:events:dispatched"
)

type RedisEventBus struct {
	client            *redis.Client
	stageChannel      string
	dispatchedChannel string
	logger            *logrus.Logger
}

func NewRedisEventBus(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{
		client:            client,
		stageChannel:      stageChannel,
		dispatchedChannel: dispatchedChannel,
		logger:            log.GetLogger(),
	}
}

// PublishExecutionDispatched announces a run the engine has accepted.
func (b *RedisEventBus) PublishExecutionDispatched(ctx context.Context, event domain.ExecutionDispatchedEvent) error {
	return b.publish(ctx, b.dispatchedChannel, event)
}

// PublishStageChanged is the ingestion worker's side of the stage channel.
func (b *RedisEventBus) PublishStageChanged(ctx context.Context, event domain.StageChangedEvent) error {
	return b.publish(ctx, b.stageChannel, event)
}

func (b *RedisEventBus) publish(ctx context.Context, channel string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	return errors.Wrapf(b.client.Publish(ctx, channel, payload).Err(), "publish to %s", channel)
}

// SubscribeToStageEvents opens a continuous stream for the Coordinator. The
// returned channel is closed once ctx is done.
func (b *RedisEventBus) SubscribeToStageEvents(ctx context.Context) (<-chan domain.StageChangedEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.stageChannel)

	// Wait for the subscription confirmation so no event published after
	// this call returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Wrapf(err, "subscribe to %s", b.stageChannel)
	}

	out := make(chan domain.StageChangedEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event domain.StageChangedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.WithFields(logrus.Fields{
						"channel": msg.Channel,
						"error":   err,
					}).Warn("event bus: dropping malformed stage event")
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
