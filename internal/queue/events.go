package queue

import (
	"context"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/redis"
)

const (
	MetaEventType = "type"
	MetaEventID   = "event_id"
)

// EventPublisher writes domain events to a stream. It only publishes, so it
// does not create a consumer group.
type EventPublisher struct {
	queue *Queue
}

func NewEventPublisher(adapter redis.RedisAdapter, stream string, maxLen int64) *EventPublisher {
	return &EventPublisher{
		queue: &Queue{
			adapter: adapter,
			config:  QueueConfig{Name: stream, MaxLen: maxLen},
		},
	}
}

func (p *EventPublisher) PublishEvent(ctx context.Context, ev *model.Event) error {
	_, err := p.queue.PublishJSON(ctx, ev, map[string]string{
		MetaEventType: string(ev.Type),
		MetaEventID:   ev.ID,
	})
	return err
}
