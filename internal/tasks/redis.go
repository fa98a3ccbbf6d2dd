package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Redis keeps ready tasks in a list and postponed ones in a sorted set
// scored by their due time in milliseconds.
type Redis struct {
	rdb      redis.UniversalClient
	ready    string
	delayed  string
	poll     time.Duration
	promoter time.Duration
	now      func() time.Time
}

func NewRedis(rdb redis.UniversalClient, prefix string) *Redis {
	return &Redis{
		rdb:      rdb,
		ready:    prefix + ":ready",
		delayed:  prefix + ":delayed",
		poll:     time.Second,
		promoter: time.Second,
		now:      time.Now,
	}
}

func (r *Redis) Publish(ctx context.Context, t *Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}

	if t.NotBefore.After(r.now()) {
		return r.rdb.ZAdd(ctx, r.delayed, redis.Z{
			Score:  float64(t.NotBefore.UnixMilli()),
			Member: data,
		}).Err()
	}

	return r.rdb.LPush(ctx, r.ready, data).Err()
}

// promote moves due delayed tasks onto the ready list. ZRem decides the
// winner when several consumers promote at once.
func (r *Redis) promote(ctx context.Context) error {
	due, err := r.rdb.ZRangeByScore(ctx, r.delayed, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(r.now().UnixMilli(), 10),
	}).Result()
	if err != nil {
		return err
	}

	for _, member := range due {
		removed, err := r.rdb.ZRem(ctx, r.delayed, member).Result()
		if err != nil {
			return err
		}

		if removed == 0 {
			continue
		}

		if err := r.rdb.LPush(ctx, r.ready, member).Err(); err != nil {
			return err
		}
	}

	return nil
}

func (r *Redis) Consume(ctx context.Context, n int, fn func(context.Context, *Task)) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(r.promoter)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := r.promote(ctx); err != nil && ctx.Err() == nil {
					return fmt.Errorf("promoting delayed tasks: %w", err)
				}
			}
		}
	})

	for range n {
		g.Go(func() error {
			for ctx.Err() == nil {
				res, err := r.rdb.BRPop(ctx, r.poll, r.ready).Result()
				if errors.Is(err, redis.Nil) {
					continue
				}

				if err != nil {
					if ctx.Err() != nil {
						return nil
					}

					return fmt.Errorf("popping task: %w", err)
				}

				var t Task
				if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
					// Undecodable payloads are dropped; retrying cannot fix them.
					continue
				}

				fn(ctx, &t)
			}

			return nil
		})
	}

	return g.Wait()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
