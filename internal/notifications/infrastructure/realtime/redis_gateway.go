// Package realtime pushes live updates to connected clients over Redis
// pub/sub. The websocket tier subscribes to per-user channels and fans
// the payloads out to open connections.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/keyturn/keyturn/internal/notifications/domain"
)

// RedisGateway publishes realtime events to per-user Redis channels.
type RedisGateway struct {
	client *redis.Client
}

// NewRedisGateway creates a gateway on an established Redis client.
func NewRedisGateway(client *redis.Client) *RedisGateway {
	return &RedisGateway{client: client}
}

func notificationChannel(userID uuid.UUID) string {
	return fmt.Sprintf("keyturn.user.%s.notifications", userID)
}

func moveInChannel(userID uuid.UUID) string {
	return fmt.Sprintf("keyturn.user.%s.move_in", userID)
}

// EmitNotification publishes a notification to the user's channel.
func (g *RedisGateway) EmitNotification(ctx context.Context, userID uuid.UUID, n *domain.Notification) error {
	payload, err := json.Marshal(map[string]any{
		"id":           n.ID,
		"type":         n.Type,
		"title":        n.Title,
		"body":         n.Body,
		"reference_id": n.ReferenceID,
		"created_at":   n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return g.client.Publish(ctx, notificationChannel(userID), payload).Err()
}

// EmitMoveInVerificationUpdate publishes a verification status change to
// the user's channel.
func (g *RedisGateway) EmitMoveInVerificationUpdate(ctx context.Context, userID, offerID uuid.UUID, status string) error {
	payload, err := json.Marshal(map[string]any{
		"offer_id": offerID,
		"status":   status,
	})
	if err != nil {
		return fmt.Errorf("failed to encode verification update: %w", err)
	}
	return g.client.Publish(ctx, moveInChannel(userID), payload).Err()
}

// NoopGateway satisfies RealtimeGateway without publishing anywhere.
// Used in development when no Redis is configured.
type NoopGateway struct{}

func (NoopGateway) EmitNotification(ctx context.Context, userID uuid.UUID, n *domain.Notification) error {
	return nil
}

func (NoopGateway) EmitMoveInVerificationUpdate(ctx context.Context, userID, offerID uuid.UUID, status string) error {
	return nil
}
