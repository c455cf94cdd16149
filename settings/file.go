package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.yaml.in/yaml/v3"

	"github.com/lixenwraith/spotlight/core"
)

const maxSettingsFileBytes = 64 << 10

// FileStore persists the settings record as a YAML mapping
// Writes replace the file atomically; Watch delivers mutations made by other
// processes. Each mutation is reported once, whether observed through Set or
// through the watcher
type FileStore struct {
	path string
	log  *slog.Logger

	mu   sync.Mutex // serialises read-modify-write and the snapshot
	last Record     // contents most recently reported to listeners
	hub  hub

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFileStore creates a store backed by the file at path; the file need not exist
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileStore{
		path: filepath.Clean(path),
		log:  logger.With("component", "settings-file"),
		last: Record{},
	}
}

// Path returns the backing file path
func (f *FileStore) Path() string {
	return f.path
}

// Get returns stored values merged over defaults
func (f *FileStore) Get(ctx context.Context, defaults Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored, err := f.read()
	if err != nil {
		return nil, err
	}
	return Merge(defaults, stored), nil
}

// Set merges values into the file and notifies listeners of changed keys
// Keys already in the file but outside values, including unknown ones, are preserved
func (f *FileStore) Set(ctx context.Context, values Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	current, err := f.read()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	for k, v := range Normalize(values) {
		current[k] = v
	}
	if err := f.write(current); err != nil {
		f.mu.Unlock()
		return err
	}
	changes := Diff(f.last, current)
	f.last = current
	f.mu.Unlock()

	f.log.Debug("settings written", "path", f.path, "changed", len(changes))
	f.hub.notify(changes)
	return nil
}

// OnChange registers a change listener
// Listeners run on the watcher goroutine for external writes and on the
// writer's goroutine for writes made through this store
func (f *FileStore) OnChange(fn Listener) func() {
	return f.hub.add(fn)
}

// Watch starts observing the settings directory for writes by other processes
// The watcher stops when ctx is cancelled or Close is called
func (f *FileStore) Watch(ctx context.Context) error {
	f.watchMu.Lock()
	defer f.watchMu.Unlock()
	if f.watcher != nil {
		return nil
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("watch settings: mkdir: %w", err)
	}

	f.mu.Lock()
	if snapshot, err := f.read(); err == nil {
		f.last = snapshot
	} else {
		f.log.Warn("initial settings snapshot failed", "path", f.path, "error", err)
	}
	f.mu.Unlock()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch settings: %w", err)
	}
	// Watching the directory survives the rename that replaces the file
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch settings: add %s: %w", dir, err)
	}

	f.watcher = w
	f.done = make(chan struct{})
	f.wg.Add(1)
	core.Go(func() {
		defer f.wg.Done()
		f.watchLoop(ctx, w, f.done)
	})
	return nil
}

// Close stops the watcher if running
func (f *FileStore) Close() error {
	f.watchMu.Lock()
	w, done := f.watcher, f.done
	f.watcher, f.done = nil, nil
	f.watchMu.Unlock()

	if w == nil {
		return nil
	}
	close(done)
	err := w.Close()
	f.wg.Wait()
	return err
}

func (f *FileStore) watchLoop(ctx context.Context, w *fsnotify.Watcher, done <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				f.reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.log.Warn("settings watcher error", "error", err)
		}
	}
}

// reload diffs the file against the last reported snapshot
func (f *FileStore) reload() {
	f.mu.Lock()
	current, err := f.read()
	if err != nil {
		f.mu.Unlock()
		f.log.Warn("settings reload failed", "path", f.path, "error", err)
		return
	}
	changes := Diff(f.last, current)
	f.last = current
	f.mu.Unlock()

	if len(changes) > 0 {
		f.log.Debug("external settings change", "path", f.path, "changed", len(changes))
	}
	f.hub.notify(changes)
}

// read decodes the file; a missing or empty file is an empty record
func (f *FileStore) read() (Record, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxSettingsFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrUnavailable, err)
	}
	if len(raw) > maxSettingsFileBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrUnavailable, maxSettingsFileBytes)
	}

	rec := Record{}
	if len(raw) == 0 {
		return rec, nil
	}
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrUnavailable, err)
	}
	return Normalize(rec), nil
}

// write replaces the file via temp file + rename in the same directory
func (f *FileStore) write(rec Record) (err error) {
	raw, err := yaml.Marshal(map[string]any(rec))
	if err != nil {
		return fmt.Errorf("save settings: marshal: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: mkdir: %v", ErrUnavailable, err)
	}
	tmp, err := os.CreateTemp(dir, ".settings.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrUnavailable, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
		}
		if err != nil {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				f.log.Warn("failed to remove temp file", "path", tmpPath, "error", rmErr)
			}
		}
	}()

	if _, err = tmp.Write(raw); err != nil {
		return fmt.Errorf("%w: write: %v", ErrUnavailable, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", ErrUnavailable, err)
	}
	err = tmp.Close()
	tmp = nil
	if err != nil {
		return fmt.Errorf("%w: close: %v", ErrUnavailable, err)
	}
	if err = os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrUnavailable, err)
	}
	return nil
}
