package events

import (
	"context"
	"sync"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
)

// TaskStatusChanged is published whenever a task transitions to a new status.
type TaskStatusChanged struct {
	Task      domain.Task
	NewStatus string
}

type Handler func(ctx context.Context, evt TaskStatusChanged)

// Bus fans task status changes out to subscribers, synchronously and in
// subscription order. Handlers must not block; they own their error handling.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, evt TaskStatusChanged) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, evt)
	}
}
