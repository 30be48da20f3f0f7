package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// SignalBus implements domain.SignalBus using Redis Pub/Sub. Delivery is
// ephemeral: a subscriber that is down when a race completes misses the
// event, and the manual recalculation endpoint exists to replay it.
type SignalBus struct {
	rdb *redis.Client
}

// NewSignalBus creates a SignalBus backed by the given Client.
func NewSignalBus(c *Client) *SignalBus {
	return &SignalBus{rdb: c.Underlying()}
}

// Publish sends a raw byte payload to a Redis Pub/Sub channel.
func (sb *SignalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := sb.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe creates a Redis Pub/Sub subscription and returns a read-only
// channel of raw payloads. The subscription and the returned channel are
// closed when ctx is cancelled.
func (sb *SignalBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	var pubsub *redis.PubSub
	if hasPattern(channel) {
		pubsub = sb.rdb.PSubscribe(ctx, channel)
	} else {
		pubsub = sb.rdb.Subscribe(ctx, channel)
	}

	// Verify the subscription is established by receiving the confirmation.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", channel, err)
	}

	out := make(chan []byte, 128)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// hasPattern returns true when the Redis channel includes glob-style
// wildcards, in which case PSubscribe must be used instead of Subscribe.
func hasPattern(channel string) bool {
	return strings.ContainsAny(channel, "*?[")
}

// Compile-time interface check.
var _ domain.SignalBus = (*SignalBus)(nil)
