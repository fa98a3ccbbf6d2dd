package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"
)

// Open builds a broker from a URL: redis://host:port/db,
// pubsub://project/topic or memory://.
func Open(ctx context.Context, rawURL, credentialsJSON string) (Broker, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing broker url: %w", err)
	}

	switch u.Scheme {
	case "redis", "rediss":
		opts, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}

		return NewRedis(redis.NewClient(opts), "tasks"), nil
	case "pubsub":
		topic := strings.Trim(u.Path, "/")
		if u.Host == "" || topic == "" {
			return nil, fmt.Errorf("pubsub broker url must be pubsub://project/topic")
		}

		var opts []option.ClientOption
		if credentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
		}

		client, err := pubsub.NewClient(ctx, u.Host, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating pubsub client: %w", err)
		}

		return NewPubSub(ctx, client, topic, topic+"-worker")
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported broker scheme %q", u.Scheme)
	}
}
