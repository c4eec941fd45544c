package view

import "errors"

// Sentinel errors returned by Manager operations. Transports map these
// to their own error surfaces; none of them indicates a partial write —
// a rejected operation leaves the store and version untouched.
var (
	// ErrViewNotFound is returned when a view id is not in the store.
	ErrViewNotFound = errors.New("view: view not found")

	// ErrViewExists is returned when creating a view with an id that is
	// already taken.
	ErrViewExists = errors.New("view: view already exists")

	// ErrComponentNotFound is returned when a component id is not in the
	// view's tree.
	ErrComponentNotFound = errors.New("view: component not found")

	// ErrComponentExists is returned when adding a component with an id
	// already present in the view's tree.
	ErrComponentExists = errors.New("view: component id already exists")

	// ErrComponentLimit is returned when adding a component would exceed
	// the per-view component limit.
	ErrComponentLimit = errors.New("view: max components per view exceeded")

	// ErrAuthoringDisabled is returned by mutating operations while the
	// authoring gate is off.
	ErrAuthoringDisabled = errors.New("view: authoring disabled")

	// ErrUnknownAdapter is returned when rendering with an adapter type
	// that is not registered.
	ErrUnknownAdapter = errors.New("view: unknown adapter")

	// ErrAdapterDisabled is returned when registering an adapter that is
	// not in the enabled set.
	ErrAdapterDisabled = errors.New("view: adapter not enabled")
)
