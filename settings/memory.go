package settings

import (
	"context"
	"sync"
)

// hub is a registry of change listeners shared by store implementations
type hub struct {
	mu        sync.Mutex
	next      int
	listeners map[int]Listener
}

func (h *hub) add(fn Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[int]Listener)
	}
	id := h.next
	h.next++
	h.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// notify delivers changes to a snapshot of listeners outside the lock
func (h *hub) notify(changes Changes) {
	if len(changes) == 0 {
		return
	}
	h.mu.Lock()
	fns := make([]Listener, 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(changes)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// MemoryStore is an in-process Store
// Notifications are delivered synchronously on the writer's goroutine after the write commits
type MemoryStore struct {
	mu   sync.RWMutex
	data Record
	fail error
	hub  hub
}

// NewMemoryStore creates a store seeded with initial values
func NewMemoryStore(initial Record) *MemoryStore {
	return &MemoryStore{data: Normalize(initial.Clone())}
}

// SetFailure makes subsequent Get and Set calls fail with err; nil restores the store
func (m *MemoryStore) SetFailure(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// Get returns stored values merged over defaults
func (m *MemoryStore) Get(ctx context.Context, defaults Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return Merge(defaults, m.data), nil
}

// Set writes values and notifies listeners of the keys that changed
func (m *MemoryStore) Set(ctx context.Context, values Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	values = Normalize(values)

	m.mu.Lock()
	if m.fail != nil {
		m.mu.Unlock()
		return m.fail
	}
	changes := Diff(m.data, values)
	for k, v := range values {
		m.data[k] = v
	}
	m.mu.Unlock()

	m.hub.notify(changes)
	return nil
}

// OnChange registers a change listener
func (m *MemoryStore) OnChange(fn Listener) func() {
	return m.hub.add(fn)
}

// Snapshot returns a copy of everything stored
func (m *MemoryStore) Snapshot() Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.Clone()
}

// Listeners returns the number of registered listeners
func (m *MemoryStore) Listeners() int {
	return m.hub.count()
}
