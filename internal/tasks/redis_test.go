package tasks_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/tasks"
)

// Runs against a real server when TEST_REDIS_URL is set.
func TestRedis_DelayedDelivery(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	prefix := "test-" + uuid.NewString()

	broker := tasks.NewRedis(rdb, prefix)
	defer broker.Close()
	defer rdb.Del(context.Background(), prefix+":ready", prefix+":delayed")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := tasks.NewClient(broker, 0, 0)
	_, err = client.Enqueue(ctx, "later", nil, tasks.Options{Delay: 1500 * time.Millisecond})
	require.NoError(t, err)
	_, err = client.Enqueue(ctx, "now", nil, tasks.Options{})
	require.NoError(t, err)

	var order []string

	cctx, stop := context.WithCancel(ctx)
	err = broker.Consume(cctx, 1, func(_ context.Context, t *tasks.Task) {
		order = append(order, t.Name)
		if len(order) == 2 {
			stop()
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"now", "later"}, order)
}
