package usecase

import (
	"context"

	"alima/internal/infrastructure/events"
	"alima/pkg/logger"
)

// publish emits a domain event after its write has committed. A failure is
// logged and never reaches the caller.
func publish(ctx context.Context, publisher events.Publisher, routingKey string, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, routingKey, payload); err != nil {
		logger.Warn("Event %s not published: %v", routingKey, err)
	}
}
