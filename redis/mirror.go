// Package redis mirrors cluster events to a Redis channel so external
// dashboards can watch a session live. The mirror is optional: without
// REDIS_HOST in the environment the server runs without one.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	goredis "github.com/go-redis/redis/v8"

	"kubesim/models"
	"kubesim/pkg/logging"
)

const defaultChannel = "kubesim:events"

type Mirror struct {
	client  *goredis.Client
	channel string
}

// FromEnv builds a mirror from REDIS_HOST / REDIS_PORT / REDIS_CHANNEL.
// Returns nil when REDIS_HOST is unset; a set host that cannot be
// reached is an error, not a silent no-op.
func FromEnv(ctx context.Context) (*Mirror, error) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil, nil
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	channel := os.Getenv("REDIS_CHANNEL")
	if channel == "" {
		channel = defaultChannel
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis mirror: ping %s:%s: %w", host, port, err)
	}
	logging.Info("Mirror", "publishing events to redis %s:%s channel %s", host, port, channel)
	return &Mirror{client: client, channel: channel}, nil
}

// Publish sends each event as one JSON message, tagged with the session
// it came from. Publish failures are logged and dropped; the simulation
// never blocks on the mirror.
func (m *Mirror) Publish(ctx context.Context, sessionID string, events []models.Event) {
	if m == nil {
		return
	}
	for _, ev := range events {
		payload, err := json.Marshal(struct {
			Session string       `json:"session"`
			Event   models.Event `json:"event"`
		}{Session: sessionID, Event: ev})
		if err != nil {
			continue
		}
		if err := m.client.Publish(ctx, m.channel, payload).Err(); err != nil {
			logging.Error("Mirror", err, "dropped event %s/%s", ev.Reason, ev.ObjectName)
			return
		}
	}
}

func (m *Mirror) Close() error {
	if m == nil {
		return nil
	}
	return m.client.Close()
}
