// Package tasks is a small named-task queue: a broker moves serialized
// tasks between processes, a Runner executes them under time limits with
// retries, and a Scheduler enqueues them on cron schedules.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownTask = errors.New("unknown task")
	// ErrRecycle is returned by Runner.Run when the worker should be
	// replaced by a fresh process.
	ErrRecycle = errors.New("worker recycle requested")
)

// Task is one unit of work on the wire.
type Task struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Args       json.RawMessage `json:"args,omitempty"`
	Attempt    int             `json:"attempt"`
	MaxRetries int             `json:"max_retries"`
	RetryDelay time.Duration   `json:"retry_delay"`
	NotBefore  time.Time       `json:"not_before"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Expired reports whether the task should be dropped unrun at now.
func (t *Task) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Decode unmarshals the task arguments into v.
func (t *Task) Decode(v any) error {
	if len(t.Args) == 0 {
		return nil
	}

	if err := json.Unmarshal(t.Args, v); err != nil {
		return fmt.Errorf("decoding %s args: %w", t.Name, err)
	}

	return nil
}

// Options tune a single enqueue. Zero values fall back to the client
// defaults.
type Options struct {
	MaxRetries *int
	RetryDelay time.Duration
	// Expires drops the task if it has not started within this window.
	Expires time.Duration
	// Delay postpones the first attempt.
	Delay time.Duration
}

// Broker moves tasks between producers and consumers.
type Broker interface {
	// Publish makes t available no earlier than t.NotBefore.
	Publish(ctx context.Context, t *Task) error
	// Consume delivers tasks to fn from up to n goroutines until ctx ends.
	Consume(ctx context.Context, n int, fn func(context.Context, *Task)) error
	Close() error
}

type Client struct {
	broker     Broker
	maxRetries int
	retryDelay time.Duration
	now        func() time.Time
}

func NewClient(broker Broker, maxRetries int, retryDelay time.Duration) *Client {
	return &Client{broker: broker, maxRetries: maxRetries, retryDelay: retryDelay, now: time.Now}
}

// Enqueue submits a named task with JSON-encoded args.
func (c *Client) Enqueue(ctx context.Context, name string, args any, opts Options) (*Task, error) {
	now := c.now()

	t := &Task{
		ID:         uuid.NewString(),
		Name:       name,
		MaxRetries: c.maxRetries,
		RetryDelay: c.retryDelay,
		NotBefore:  now.Add(opts.Delay),
		EnqueuedAt: now,
	}

	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encoding %s args: %w", name, err)
		}

		t.Args = raw
	}

	if opts.MaxRetries != nil {
		t.MaxRetries = *opts.MaxRetries
	}

	if opts.RetryDelay > 0 {
		t.RetryDelay = opts.RetryDelay
	}

	if opts.Expires > 0 {
		t.ExpiresAt = new(now.Add(opts.Expires))
	}

	if err := c.broker.Publish(ctx, t); err != nil {
		return nil, fmt.Errorf("publishing %s: %w", name, err)
	}

	return t, nil
}
