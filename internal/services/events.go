package services

import (
	"time"

	"go.uber.org/zap"
)

// Domain event types published after successful mutations.
const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventProductRestored = "product.restored"
	EventFavoriteAdded   = "favorite.added"
	EventFavoriteRemoved = "favorite.removed"
)

// EventPublisher delivers domain events to a broker.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// Event is the envelope every domain event is published in.
type Event struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data"`
}

// publishEvent sends an event if a publisher is configured. Broker failures
// are logged and never surface to the caller.
func publishEvent(publisher EventPublisher, logger *zap.Logger, eventType string, data map[string]interface{}) {
	if publisher == nil {
		return
	}
	event := Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
	if err := publisher.Publish(eventType, event); err != nil {
		logger.Warn("failed to publish domain event", zap.String("type", eventType), zap.Error(err))
	}
}
