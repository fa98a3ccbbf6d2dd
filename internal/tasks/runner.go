package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
	"github.com/MrJamesThe3rd/forwarder/internal/metrics"
)

// Handler runs one task. Returning an error wrapping
// apperr.ErrUpstreamTransient schedules a retry.
type Handler func(ctx context.Context, t *Task) error

// Outcomes recorded per task execution.
const (
	OutcomeSuccess = "success"
	OutcomeRetry   = "retry"
	OutcomeFailed  = "failed"
	OutcomeExpired = "expired"
	OutcomeTimeout = "timeout"
	OutcomeUnknown = "unknown"
)

var (
	errSoftLimit = errors.New("soft time limit exceeded")
	errHardLimit = errors.New("hard time limit exceeded")
)

type RunnerOptions struct {
	Concurrency   int
	SoftTimeLimit time.Duration
	HardTimeLimit time.Duration
	// MaxTasks recycles the worker after this many executions.
	MaxTasks int
	// MaxRSS recycles the worker once resident memory exceeds it, in bytes.
	MaxRSS uint64
	// RSS samples resident memory. Defaults to the current process.
	RSS func() (uint64, error)
	Now func() time.Time
}

type Runner struct {
	broker   Broker
	handlers map[string]Handler
	opts     RunnerOptions
	logger   *slog.Logger

	executed atomic.Int64
	recycle  atomic.Bool
}

func NewRunner(broker Broker, opts RunnerOptions, logger *slog.Logger) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	if opts.HardTimeLimit <= 0 {
		opts.HardTimeLimit = 10 * time.Minute
	}

	if opts.SoftTimeLimit <= 0 || opts.SoftTimeLimit > opts.HardTimeLimit {
		opts.SoftTimeLimit = opts.HardTimeLimit
	}

	if opts.RSS == nil {
		opts.RSS = processRSS
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{broker: broker, handlers: map[string]Handler{}, opts: opts, logger: logger}
}

func processRSS() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}

	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}

	return info.RSS, nil
}

// Register binds a handler to a task name. Registering twice replaces it.
func (r *Runner) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Names lists registered task names.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}

	return names
}

// Run consumes tasks until ctx ends or the worker asks to be recycled, in
// which case it returns ErrRecycle once in-flight tasks finish.
func (r *Runner) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	err := r.broker.Consume(ctx, r.opts.Concurrency, func(ctx context.Context, t *Task) {
		r.Execute(ctx, t)

		if r.shouldRecycle() {
			stop()
		}
	})
	if err != nil {
		return err
	}

	if r.recycle.Load() {
		return ErrRecycle
	}

	return nil
}

func (r *Runner) shouldRecycle() bool {
	if r.recycle.Load() {
		return true
	}

	if r.opts.MaxTasks > 0 && r.executed.Load() >= int64(r.opts.MaxTasks) {
		r.logger.Info("recycling worker", "reason", "max tasks", "executed", r.executed.Load())
		r.recycle.Store(true)

		return true
	}

	if r.opts.MaxRSS > 0 {
		rss, err := r.opts.RSS()
		if err != nil {
			r.logger.Warn("failed to sample memory", "error", err)
			return false
		}

		if rss > r.opts.MaxRSS {
			r.logger.Info("recycling worker", "reason", "memory", "rss_bytes", rss)
			r.recycle.Store(true)

			return true
		}
	}

	return false
}

// Execute runs one task under the soft and hard limits and decides
// whether to retry it. It returns the recorded outcome.
func (r *Runner) Execute(ctx context.Context, t *Task) string {
	started := r.opts.Now()
	r.executed.Add(1)

	logger := r.logger.With("task", t.Name, "task_id", t.ID, "attempt", t.Attempt)

	outcome, err := r.execute(ctx, t, started)

	metrics.RecordTask(t.Name, outcome, time.Since(started))

	switch outcome {
	case OutcomeSuccess:
		logger.Info("task succeeded", "duration", time.Since(started))
	case OutcomeExpired:
		logger.Warn("task expired before running")
	case OutcomeRetry:
		logger.Warn("task failed, retrying", "error", err, "retry_in", t.RetryDelay)
	default:
		logger.Error("task failed", "outcome", outcome, "error", err)
	}

	return outcome
}

func (r *Runner) execute(ctx context.Context, t *Task, started time.Time) (string, error) {
	if t.Expired(started) {
		return OutcomeExpired, nil
	}

	h, ok := r.handlers[t.Name]
	if !ok {
		return OutcomeUnknown, fmt.Errorf("%w: %s", ErrUnknownTask, t.Name)
	}

	err := r.call(ctx, h, t)
	switch {
	case err == nil:
		return OutcomeSuccess, nil
	case errors.Is(err, errHardLimit):
		// The handler goroutine is still running; only a new process frees it.
		r.recycle.Store(true)
		return OutcomeTimeout, err
	case errors.Is(err, errSoftLimit):
		return OutcomeTimeout, err
	case apperr.IsRetriable(err) && t.Attempt < t.MaxRetries:
		retry := *t
		retry.Attempt++
		retry.NotBefore = r.opts.Now().Add(t.RetryDelay)

		if perr := r.broker.Publish(context.WithoutCancel(ctx), &retry); perr != nil {
			return OutcomeFailed, fmt.Errorf("republishing after %w: %w", err, perr)
		}

		return OutcomeRetry, err
	default:
		return OutcomeFailed, err
	}
}

// call runs h with a context cancelled at the soft limit and gives up
// waiting at the hard limit.
func (r *Runner) call(ctx context.Context, h Handler, t *Task) error {
	softCtx, cancel := context.WithTimeoutCause(ctx, r.opts.SoftTimeLimit, errSoftLimit)
	defer cancel()

	done := make(chan error, 1)

	var once sync.Once

	go func() {
		defer func() {
			if p := recover(); p != nil {
				once.Do(func() { done <- fmt.Errorf("task panicked: %v", p) })
			}
		}()

		err := h(softCtx, t)
		once.Do(func() { done <- err })
	}()

	hard := time.NewTimer(r.opts.HardTimeLimit)
	defer hard.Stop()

	select {
	case err := <-done:
		if err != nil && errors.Is(context.Cause(softCtx), errSoftLimit) {
			return fmt.Errorf("%w: %w", errSoftLimit, err)
		}

		return err
	case <-hard.C:
		return errHardLimit
	}
}
