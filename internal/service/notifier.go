package service

import (
	"context"

	"github.com/iliyamo/community-events/internal/queue"
)

// QueueNotifier publishes registration events to the configured RabbitMQ
// broker.
type QueueNotifier struct {
	url string
}

func NewQueueNotifier(url string) *QueueNotifier { return &QueueNotifier{url: url} }

func (n *QueueNotifier) Publish(ctx context.Context, event queue.RegistrationEvent) error {
	return queue.PublishRegistrationEvent(ctx, n.url, event)
}
