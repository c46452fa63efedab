package ports

import (
	"context"

	"github.com/iliyamo/community-events/internal/queue"
)

// Notifier delivers registration lifecycle events to interested consumers.
// The production implementation publishes to RabbitMQ; delivery failures
// must not fail the originating request.
type Notifier interface {
	Publish(ctx context.Context, event queue.RegistrationEvent) error
}
