package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerManager_ProcessesJobs(t *testing.T) {
	w := NewWorkerManager(10, 3, nil)

	var mu sync.Mutex
	seen := map[int]bool{}
	var wg sync.WaitGroup
	wg.Add(5)
	w.SetWorker(func(_ int, job interface{}) {
		mu.Lock()
		seen[job.(int)] = true
		mu.Unlock()
		wg.Done()
	})

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	for i := 0; i < 5; i++ {
		assert.True(t, w.Enqueue(i))
	}
	wg.Wait()

	w.Exit()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrWorkersTerminated)
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}

	assert.Len(t, seen, 5)
}

func TestWorkerManager_EnqueueAfterExit(t *testing.T) {
	w := NewWorkerManager(0, 1, nil)
	w.Exit()
	w.Exit()
	assert.False(t, w.Enqueue("late"))
}
