package event

import (
	"context"

	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// EventSource is an aggregate that buffers domain events until they are published
type EventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// PublishPending publishes the buffered events of every source in one batch and
// clears them. Publish failures are logged and never fail the calling
// operation: the state change is already committed when this runs.
func PublishPending(ctx context.Context, publisher shared.EventPublisher, sources ...EventSource) {
	var events []shared.DomainEvent
	for _, src := range sources {
		if src == nil {
			continue
		}
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		for _, e := range events {
			logger.L(ctx).Warn("failed to publish domain event",
				zap.String("event_type", e.EventType()),
				zap.String("aggregate_id", e.AggregateID().String()),
				zap.Error(err),
			)
		}
	}
}
