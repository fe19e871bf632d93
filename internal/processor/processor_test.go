package processor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu   sync.Mutex
	seen []string
}

func (p *recordingProcessor) GetType() string { return "recording" }

func (p *recordingProcessor) Process(_ context.Context, msg *queue.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, msg.Metadata[queue.MetaEventID])
	return nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func TestProcessorService_ConsumesStream(t *testing.T) {
	_, adapter := setupTestRedis(t)

	svc := NewProcessorService(adapter, Config{
		Queue: queue.QueueConfig{
			Name:          "test:events",
			ConsumerGroup: "test-group",
			ConsumerName:  "test",
			PollInterval:  20 * time.Millisecond,
		},
		Consumers:      2,
		Workers:        2,
		ReportInterval: 50 * time.Millisecond,
	})
	rec := &recordingProcessor{}
	svc.RegisterProcessor(rec)

	var taskRan sync.WaitGroup
	taskRan.Add(1)
	svc.RegisterTask(func(ctx context.Context) {
		taskRan.Done()
		<-ctx.Done()
	})

	require.NoError(t, svc.Start())

	publisher := queue.NewEventPublisher(adapter, "test:events", 0)
	ctx := context.Background()
	for _, id := range []string{"ev-1", "ev-2", "ev-3"} {
		require.NoError(t, publisher.PublishEvent(ctx, &model.Event{ID: id, Type: model.EventClientCreated}))
	}

	assert.Eventually(t, func() bool { return rec.count() == 3 }, 3*time.Second, 20*time.Millisecond)
	taskRan.Wait()

	svc.Stop()
	snap := svc.metrics.Snapshot()
	assert.Equal(t, int64(3), snap.Processed)
	assert.Equal(t, int64(0), snap.Failed)
}

func TestServiceMetrics_Snapshot(t *testing.T) {
	m := NewServiceMetrics()
	m.RecordSuccess(10 * time.Millisecond)
	m.RecordSuccess(30 * time.Millisecond)
	m.RecordFailure()

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Processed)
	assert.Equal(t, int64(1), s.Failed)
	assert.Equal(t, 20*time.Millisecond, s.AvgDuration)
}
