package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultChannel = "milk:events"

// RedisRelay shares events between instances over redis pub/sub.
type RedisRelay struct {
	Client  *redis.Client
	Channel string
	log     logrus.FieldLogger
}

func NewRedisRelay(client *redis.Client, channel string, log logrus.FieldLogger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{Client: client, Channel: channel, log: log.WithField("component", "redis-relay")}
}

// DialRedis parses a redis:// URL and checks the server is reachable.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, r.Channel, payload).Err()
}

func (r *RedisRelay) Subscribe(ctx context.Context, fn func(Envelope)) error {
	sub := r.Client.Subscribe(ctx, r.Channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe %s: %w", r.Channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					r.log.WithError(err).Warn("dropping malformed relay message")
					continue
				}
				fn(env)
			}
		}
	}()
	return nil
}

func (r *RedisRelay) Close() error {
	return r.Client.Close()
}
