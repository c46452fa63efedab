package ports

import (
	"context"

	"github.com/iliyamo/community-events/internal/model"
)

// EventStore is the read surface the registration service needs from the
// event catalogue.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}
