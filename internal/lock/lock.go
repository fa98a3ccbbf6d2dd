// Package lock provides non-blocking mutual exclusion across processes.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

// ErrNotObtained means another holder owns the lock.
var ErrNotObtained = errors.New("lock not obtained")

type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out locks without waiting for them.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Redis locks keys with a TTL so a crashed holder cannot wedge the key.
type Redis struct {
	client *redislock.Client
}

func NewRedis(rdb redislock.RedisClient) *Redis {
	return &Redis{client: redislock.New(rdb)}
}

func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	l, err := r.client.Obtain(ctx, "lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}

	if err != nil {
		return nil, fmt.Errorf("obtaining lock %s: %w", key, err)
	}

	return l, nil
}

// Postgres uses session advisory locks. The lock lives on a dedicated
// connection and ends with it, so ttl is not used.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) TryLock(ctx context.Context, key string, _ time.Duration) (Lock, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserving lock connection: %w", err)
	}

	var ok bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, key).Scan(&ok); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("obtaining lock %s: %w", key, err)
	}

	if !ok {
		_ = conn.Close()
		return nil, ErrNotObtained
	}

	return &advisory{conn: conn, key: key}, nil
}

type advisory struct {
	conn *sql.Conn
	key  string
}

func (a *advisory) Release(ctx context.Context) error {
	defer a.conn.Close()

	if _, err := a.conn.ExecContext(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, a.key); err != nil {
		return fmt.Errorf("releasing lock %s: %w", a.key, err)
	}

	return nil
}
