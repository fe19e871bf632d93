package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/internal/queue"
	"github.com/nimasrn/paywise/internal/repository"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/nimasrn/paywise/pkg/prom"
)

type PaymentEventRepository interface {
	Create(ctx context.Context, ev *model.PaymentEvent) (*model.PaymentEvent, error)
}

// EventProcessor turns payment events from the stream into audit rows.
type EventProcessor struct {
	audit       PaymentEventRepository
	idempotency *IdempotencyService
}

func NewEventProcessor(audit PaymentEventRepository, idempotency *IdempotencyService) *EventProcessor {
	return &EventProcessor{
		audit:       audit,
		idempotency: idempotency,
	}
}

func (p *EventProcessor) GetType() string {
	return "payment-event"
}

func (p *EventProcessor) Process(ctx context.Context, msg *queue.Message) error {
	var ev model.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.ID == "" {
		// a malformed event never succeeds, ack it
		logger.Error("Dropping malformed event", "stream_id", msg.ID, "error", err)
		prom.IncEventProcessed("malformed", false)
		return nil
	}

	if ev.PaymentID == "" {
		logger.Debug("Event has no payment, nothing to audit", "event_id", ev.ID, "type", ev.Type)
		prom.IncEventProcessed(string(ev.Type), true)
		return nil
	}

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, ev.ID)
	switch {
	case errors.Is(err, ErrAlreadyProcessed):
		logger.Info("Event already processed, skipping", "event_id", ev.ID)
		return nil
	case errors.Is(err, ErrMaxRetriesExceeded):
		prom.IncEventProcessed(string(ev.Type), false)
		return nil
	case errors.Is(err, ErrLockAcquireFailed):
		return fmt.Errorf("event %s: %w", ev.ID, err)
	case err != nil:
		return err
	}
	defer func() { _ = p.idempotency.ReleaseLock(ctx, procCtx) }()

	_, err = p.audit.Create(ctx, &model.PaymentEvent{
		EventID:    ev.ID,
		PaymentID:  ev.PaymentID,
		ClientID:   ev.ClientID,
		Type:       ev.Type,
		FromStatus: ev.FromStatus,
		ToStatus:   ev.ToStatus,
		OccurredAt: ev.OccurredAt,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicateEvent) {
		prom.IncEventProcessed(string(ev.Type), false)
		_ = p.idempotency.MarkFailure(ctx, procCtx, err)
		return fmt.Errorf("store audit row: %w", err)
	}
	if errors.Is(err, repository.ErrDuplicateEvent) {
		logger.Info("Audit row already stored", "event_id", ev.ID)
	}

	if markErr := p.idempotency.MarkSuccess(ctx, procCtx); markErr != nil {
		logger.Error("Failed to mark success", "event_id", ev.ID, "error", markErr)
	}
	prom.IncEventProcessed(string(ev.Type), true)
	logger.Info("Payment event recorded", "event_id", ev.ID, "payment_id", ev.PaymentID, "type", ev.Type, "to_status", ev.ToStatus)
	return nil
}
