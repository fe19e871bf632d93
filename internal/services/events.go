package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/logger"
)

// publish sends ev best-effort, failures are only logged.
func publish(ctx context.Context, events EventPublisher, ev *model.Event) {
	if events == nil {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := events.PublishEvent(ctx, ev); err != nil {
		logger.Warn("[events] publish failed", "type", ev.Type, "client_id", ev.ClientID, "payment_id", ev.PaymentID, "error", err)
	}
}
