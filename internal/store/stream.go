// internal/store/stream.go
package store

import (
	"context"
	"encoding/json"

	"advisory-workers/internal/common/database"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/models"
)

// EventPublisher appends persistence events to a Redis stream for downstream
// consumers (analytics, audit).
type EventPublisher struct {
	redis  *database.RedisClient
	stream string
}

func NewEventPublisher(redis *database.RedisClient, stream string) *EventPublisher {
	return &EventPublisher{redis: redis, stream: stream}
}

func (p *EventPublisher) Publish(ctx context.Context, event models.PersistenceEvent) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", apperrors.NewPersistenceFailedError(err)
	}
	id, err := p.redis.XAdd(ctx, p.stream, map[string]interface{}{
		"user_id":     event.UserID,
		"response_id": event.Response.ResponseID,
		"source":      string(event.Response.Source),
		"payload":     string(payload),
	})
	if err != nil {
		return "", apperrors.NewPersistenceFailedError(err)
	}
	return id, nil
}
