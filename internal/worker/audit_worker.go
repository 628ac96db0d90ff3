package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/dispatch-service/internal/events"
)

// StartAuditWorker subscribes an audit log handler to every lifecycle
// event type. Handlers run synchronously on publish; they only log.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	audit := logger.Named("audit")
	handler := func(_ context.Context, event events.Event) error {
		audit.Info("lifecycle event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("request_id", event.RequestID),
			zap.String("actor", event.Actor),
			zap.Time("at", event.Timestamp))
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventRequestSubmitted,
		events.EventRequestAssigned,
		events.EventRequestCompleted,
		events.EventRequestDeleted,
		events.EventCatalogUpdated,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
