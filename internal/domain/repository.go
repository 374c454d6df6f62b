package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// AlertStore is shared by the API layer and the checker loop; implementations
// own their synchronization. TryComplete is the only mutation applied to an
// alert after creation besides Delete: it atomically applies the outcome iff
// the alert is still pending, and reports applied=false when a concurrent
// completion or deletion got there first.
type AlertStore interface {
	Create(ctx context.Context, alert *Alert) error
	ListByOwner(ctx context.Context, ownerAddress string) ([]Alert, error)
	ListPending(ctx context.Context) ([]Alert, error)
	Delete(ctx context.Context, id string) error
	TryComplete(ctx context.Context, id string, outcome CompleteOutcome) (bool, error)
}
