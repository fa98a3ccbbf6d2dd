package tasks_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/tasks"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	names []string
}

func (r *recordingEnqueuer) Enqueue(_ context.Context, name string, _ any, _ tasks.Options) (*tasks.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.names = append(r.names, name)

	return &tasks.Task{Name: name}, nil
}

func (r *recordingEnqueuer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.names)
}

func TestScheduler_Schedule(t *testing.T) {
	enq := &recordingEnqueuer{}
	s := tasks.NewScheduler(enq, time.UTC, nil)

	require.NoError(t, s.Schedule("refresh_due_alerts", "0 6 * * *", nil, tasks.Options{}))
	require.NoError(t, s.Schedule("process_emails", "@every 1s", nil, tasks.Options{}))
	assert.Error(t, s.Schedule("broken", "not a cron line", nil, tasks.Options{}))
	assert.Len(t, s.Entries(), 2)

	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return enq.count() > 0 }, 3*time.Second, 50*time.Millisecond)
}
