package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channelPrefix = "batik:chat:"

// RedisBroker publishes through Redis pub/sub so every API instance's Hub sees
// messages appended on any instance.
type RedisBroker struct {
	rdb *redis.Client
	hub *Hub
	log zerolog.Logger
}

func NewRedisBroker(ctx context.Context, redisURL string, hub *Hub, log zerolog.Logger) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBroker{rdb: rdb, hub: hub, log: log.With().Str("component", "redis_broker").Logger()}, nil
}

func ChannelFor(chatID string) string {
	return channelPrefix + chatID
}

func chatIDFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, channelPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(channel, channelPrefix)
	return id, id != ""
}

func (b *RedisBroker) Publish(ctx context.Context, chatID string, payload []byte) error {
	return b.rdb.Publish(ctx, ChannelFor(chatID), payload).Err()
}

// Run relays Redis messages into the local hub until ctx is cancelled.
func (b *RedisBroker) Run(ctx context.Context) {
	ps := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer ps.Close()

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			chatID, ok := chatIDFromChannel(msg.Channel)
			if !ok {
				continue
			}
			if err := b.hub.Publish(ctx, chatID, []byte(msg.Payload)); err != nil {
				b.log.Warn().Err(err).Str("chat_id", chatID).Msg("relay to hub failed")
			}
		}
	}
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}
