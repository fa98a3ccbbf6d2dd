package tasks

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process broker for single-binary setups and tests.
type Memory struct {
	mu     sync.Mutex
	ready  chan *Task
	timers []*time.Timer
	closed bool
}

func NewMemory() *Memory {
	return &Memory{ready: make(chan *Task, 1024)}
}

func (m *Memory) Publish(ctx context.Context, t *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return context.Canceled
	}

	cp := *t

	if wait := time.Until(t.NotBefore); wait > 0 {
		m.timers = append(m.timers, time.AfterFunc(wait, func() {
			m.mu.Lock()
			defer m.mu.Unlock()

			if !m.closed {
				m.ready <- &cp
			}
		}))

		return nil
	}

	select {
	case m.ready <- &cp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Consume(ctx context.Context, n int, fn func(context.Context, *Task)) error {
	var wg sync.WaitGroup

	for range n {
		wg.Go(func() {
			for ctx.Err() == nil {
				select {
				case <-ctx.Done():
					return
				case t := <-m.ready:
					fn(ctx, t)
				}
			}
		})
	}

	wg.Wait()

	return nil
}

// Pending is the number of ready tasks not yet consumed.
func (m *Memory) Pending() int {
	return len(m.ready)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for _, t := range m.timers {
		t.Stop()
	}

	return nil
}
