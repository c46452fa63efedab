package ports

import (
	"context"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/repository"
)

// RegistrationLedger is the transactional registration store.  Implemented
// by repository.RegistrationRepo; narrowed to an interface so the service
// can be tested against a stub.
type RegistrationLedger interface {
	Register(ctx context.Context, eventID, userID uint64) (*repository.RegisterResult, error)
	Unregister(ctx context.Context, eventID, userID uint64) (*model.Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID uint64) (*model.Registration, error)
	WaitlistPosition(ctx context.Context, eventID, userID uint64) (*int, error)
	Counts(ctx context.Context, eventID uint64) (active, waitlisted int, err error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.RegistrationDetail, error)
}
