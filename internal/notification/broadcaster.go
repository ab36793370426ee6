package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/frahmantamala/event-management/internal/observability"
	"github.com/redis/go-redis/v9"
)

const (
	MessageCreated = "notification.created"
	MessageRead    = "notification.read"
	MessageReadAll = "notification.read_all"
)

// Message is the payload pushed to a user's channel.
type Message struct {
	Kind         string        `json:"kind"`
	UserID       int64         `json:"user_id"`
	Notification *Notification `json:"notification,omitempty"`
}

type Broadcaster interface {
	Broadcast(ctx context.Context, msg Message) error
}

// RedisBroadcaster publishes each message on "<prefix>:<userID>".
type RedisBroadcaster struct {
	client  *redis.Client
	prefix  string
	metrics *observability.Metrics
}

func NewRedisBroadcaster(client *redis.Client, prefix string, metrics *observability.Metrics) *RedisBroadcaster {
	if prefix == "" {
		prefix = "notifications"
	}
	return &RedisBroadcaster{client: client, prefix: prefix, metrics: metrics}
}

func (b *RedisBroadcaster) Channel(userID int64) string {
	return b.prefix + ":" + strconv.FormatInt(userID, 10)
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification message: %w", err)
	}

	err = b.client.Publish(ctx, b.Channel(msg.UserID), payload).Err()
	b.metrics.RecordBroadcast(err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", b.Channel(msg.UserID), err)
	}
	return nil
}

// Subscribe pattern-subscribes to every user channel and hands decoded
// messages to fn until ctx is cancelled.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, logger *slog.Logger, fn func(Message)) error {
	sub := b.client.PSubscribe(ctx, b.prefix+":*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s:*: %w", b.prefix, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				logger.Warn("dropping malformed notification message", "channel", m.Channel, "error", err)
				continue
			}
			if msg.UserID == 0 {
				msg.UserID = userIDFromChannel(m.Channel)
			}
			fn(msg)
		}
	}
}

func userIDFromChannel(channel string) int64 {
	i := strings.LastIndexByte(channel, ':')
	if i < 0 {
		return 0
	}
	id, _ := strconv.ParseInt(channel[i+1:], 10, 64)
	return id
}

// NopBroadcaster is used when Redis is not configured.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(context.Context, Message) error { return nil }
