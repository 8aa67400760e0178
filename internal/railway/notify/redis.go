package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultAlertChannel = "railoptix:alerts" // Pub/Sub channel for live alerts
	recentAlertsSuffix  = ":recent"          // Capped list of recent alerts, newest first
	recentAlertsMax     = 50
	recentAlertsTTL     = 24 * time.Hour
)

// RedisNotifier publishes alerts on a Pub/Sub channel and keeps a short history
type RedisNotifier struct {
	client    *redis.Client
	channel   string
	recentKey string
}

// NewRedisNotifier creates a RedisNotifier; an empty channel uses DefaultAlertChannel
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultAlertChannel
	}
	return &RedisNotifier{client: client, channel: channel, recentKey: channel + recentAlertsSuffix}
}

func (n *RedisNotifier) Notify(ctx context.Context, alert Alert) error {
	if alert.RaisedAt.IsZero() {
		alert.RaisedAt = time.Now().UTC()
	}
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	pipe := n.client.Pipeline()
	pipe.Publish(ctx, n.channel, data)
	pipe.LPush(ctx, n.recentKey, data)
	pipe.LTrim(ctx, n.recentKey, 0, recentAlertsMax-1)
	pipe.Expire(ctx, n.recentKey, recentAlertsTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	return nil
}

// Recent returns up to limit alerts, newest first
func (n *RedisNotifier) Recent(ctx context.Context, limit int) ([]Alert, error) {
	if limit <= 0 || limit > recentAlertsMax {
		limit = recentAlertsMax
	}
	raw, err := n.client.LRange(ctx, n.recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent alerts: %w", err)
	}

	alerts := make([]Alert, 0, len(raw))
	for _, r := range raw {
		var a Alert
		if err := json.Unmarshal([]byte(r), &a); err != nil {
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// Subscribe returns a subscription to the alert channel
func (n *RedisNotifier) Subscribe(ctx context.Context) *redis.PubSub {
	return n.client.Subscribe(ctx, n.channel)
}
