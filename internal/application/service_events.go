package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/moolapay/agency-service/internal/ports"
)

// enqueueEvent stores a lifecycle event in the outbox for the worker to
// publish. Outbox unavailability never disturbs the pipeline.
func (s *Service) enqueueEvent(ctx context.Context, eventType, partitionKey string, payload map[string]any) {
	if s.outbox == nil {
		return
	}
	body, err := json.Marshal(map[string]any{
		"event_type":  eventType,
		"occurred_at": s.nowFn().Format(time.RFC3339),
		"data":        payload,
	})
	if err != nil {
		return
	}
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      body,
		OccurredAt:   s.nowFn(),
	}); err != nil {
		s.logger.WarnContext(ctx, "outbox enqueue failed",
			"module", "application", "layer", "service",
			"operation", "enqueue_event", "outcome", "degraded",
			"event_type", eventType, "error", err,
		)
	}
}
