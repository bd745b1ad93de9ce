// Package push carries event notifications to connected clients over a
// best-effort transport. The durable record lives in the notifications
// table; this channel only shortens latency and is never the source of
// truth. Consumers dedup by notification ID.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yugawara/labtrack-api/internal/models"
)

// Message is the wire payload published for a persisted notification.
type Message struct {
	ID          uint64                      `json:"id"`
	RecipientID uint64                      `json:"recipient_id"`
	Category    models.NotificationCategory `json:"category"`
	Title       string                      `json:"title"`
	Message     string                      `json:"message"`
	TaskID      *uint64                     `json:"task_id,omitempty"`
	RequestID   *uint64                     `json:"request_id,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
}

// Transport delivers a message to a recipient. Implementations must be
// cheap to call and safe to fail; callers swallow errors.
type Transport interface {
	Push(ctx context.Context, msg Message) error
	Close() error
}

// RedisTransport publishes messages to a shared Redis channel. Subscribers
// filter by recipient_id.
type RedisTransport struct {
	rdb     *redis.Client
	channel string
}

// NewRedisTransport connects to Redis and verifies the connection.
func NewRedisTransport(addr, channel string) (*RedisTransport, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisTransport{rdb: rdb, channel: channel}, nil
}

func (t *RedisTransport) Push(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return t.rdb.Publish(ctx, t.channel, raw).Err()
}

func (t *RedisTransport) Close() error {
	if t == nil || t.rdb == nil {
		return nil
	}
	return t.rdb.Close()
}

// Subscribe starts forwarding published messages to onMsg until ctx is
// cancelled. Used by the SSE/websocket edge of the surrounding app.
func (t *RedisTransport) Subscribe(ctx context.Context, onMsg func(Message)) error {
	sub := t.rdb.Subscribe(ctx, t.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					continue
				}
				onMsg(msg)
			}
		}
	}()

	return nil
}

// NoopTransport discards every message. Used when Redis is unavailable so
// notification persistence keeps working without a push channel.
type NoopTransport struct{}

func NewNoop() *NoopTransport { return &NoopTransport{} }

func (*NoopTransport) Push(context.Context, Message) error { return nil }

func (*NoopTransport) Close() error { return nil }
