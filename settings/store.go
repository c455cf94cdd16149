package settings

import "context"

// Change is the before/after value of one key in a mutation
// OldValue is nil when the key was not previously stored
type Change struct {
	NewValue any
	OldValue any
}

// Changes maps persisted key names to their change in one mutation
type Changes map[string]Change

// Listener receives change notifications; the Changes value must be treated as read-only
type Listener func(Changes)

// Store is the shared settings persistence contract
// Listeners observe every mutation, including those made by the same process
// and by other instances; delivery goroutine is implementation-defined
type Store interface {
	// Get returns stored values merged over defaults for the keys named in defaults
	Get(ctx context.Context, defaults Record) (Record, error)
	// Set writes the given keys, leaving others untouched
	Set(ctx context.Context, values Record) error
	// OnChange registers a listener; the returned func unregisters it
	OnChange(fn Listener) (cancel func())
}
