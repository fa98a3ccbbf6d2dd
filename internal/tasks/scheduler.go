package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, name string, args any, opts Options) (*Task, error)
}

// Scheduler enqueues named tasks on cron expressions. It never runs task
// bodies itself.
type Scheduler struct {
	cron     *cron.Cron
	enqueuer Enqueuer
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(enqueuer Enqueuer, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		enqueuer: enqueuer,
		timeout:  30 * time.Second,
		logger:   logger,
	}
}

// Schedule enqueues name with args whenever spec fires. spec accepts the
// standard five-field syntax and descriptors such as @every 1m.
func (s *Scheduler) Schedule(name, spec string, args any, opts Options) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if _, err := s.enqueuer.Enqueue(ctx, name, args, opts); err != nil {
			s.logger.Error("failed to enqueue scheduled task", "task", name, "error", err)
			return
		}

		s.logger.Debug("scheduled task enqueued", "task", name)
	})
	if err != nil {
		return fmt.Errorf("scheduling %s at %q: %w", name, spec, err)
	}

	return nil
}

// Entries reports the next fire time of every schedule.
func (s *Scheduler) Entries() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, len(entries))

	for i, e := range entries {
		next[i] = e.Next
	}

	return next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for in-flight enqueues or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
