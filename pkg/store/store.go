// Package store defines the persistence contract for view aggregates
// and provides the reference in-memory backend plus an S3 backend.
package store

import (
	"context"
	"errors"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound is returned when a view id does not exist.
	ErrNotFound = errors.New("store: view not found")

	// ErrCapacityExceeded is returned when inserting a new view would
	// exceed the configured maximum.
	ErrCapacityExceeded = errors.New("store: max views exceeded")
)

// ViewStore persists view aggregates keyed by view id.
//
// The caller is responsible for version bumping before Save; the store
// only persists the value it is handed. Backends that perform I/O must
// bound their latency via ctx and surface failures as errors rather
// than hanging the caller.
type ViewStore interface {
	// Get returns the view or ErrNotFound.
	Get(ctx context.Context, viewID string) (*ui.View, error)

	// List returns all views in creation order.
	List(ctx context.Context) ([]*ui.View, error)

	// Save upserts the view. Inserting past the capacity limit returns
	// ErrCapacityExceeded; updates to existing views always succeed.
	Save(ctx context.Context, view *ui.View) error

	// Delete removes the view or returns ErrNotFound. Deleting an
	// already-deleted id is an error, not a no-op.
	Delete(ctx context.Context, viewID string) error
}
