package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
)

// PubSub publishes tasks to a topic and consumes them from a subscription.
// Pub/Sub has no delayed delivery: a task received before its NotBefore
// is nacked and comes back under the subscription's retry policy.
type PubSub struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	sub    *pubsub.Subscription
	now    func() time.Time
}

func NewPubSub(ctx context.Context, client *pubsub.Client, topicID, subID string) (*PubSub, error) {
	topic := client.Topic(topicID)

	ok, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking topic %q: %w", topicID, err)
	}

	if !ok {
		if topic, err = client.CreateTopic(ctx, topicID); err != nil {
			return nil, fmt.Errorf("creating topic %q: %w", topicID, err)
		}
	}

	sub := client.Subscription(subID)

	ok, err = sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking subscription %q: %w", subID, err)
	}

	if !ok {
		sub, err = client.CreateSubscription(ctx, subID, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 20 * time.Second,
			RetryPolicy: &pubsub.RetryPolicy{
				MinimumBackoff: 10 * time.Second,
				MaximumBackoff: 600 * time.Second,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("creating subscription %q: %w", subID, err)
		}
	}

	return &PubSub{client: client, topic: topic, sub: sub, now: time.Now}, nil
}

func (p *PubSub) Publish(ctx context.Context, t *Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}

	_, err = p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"name": t.Name},
	}).Get(ctx)

	return err
}

func (p *PubSub) Consume(ctx context.Context, n int, fn func(context.Context, *Task)) error {
	p.sub.ReceiveSettings.MaxOutstandingMessages = n
	p.sub.ReceiveSettings.NumGoroutines = 1

	err := p.sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		var t Task
		if err := json.Unmarshal(m.Data, &t); err != nil {
			m.Ack()
			return
		}

		if t.NotBefore.After(p.now()) {
			m.Nack()
			return
		}

		// Acked up front: the runner owns retries by republishing.
		m.Ack()
		fn(ctx, &t)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("receiving tasks: %w", err)
	}

	return nil
}

func (p *PubSub) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
