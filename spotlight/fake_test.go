package spotlight

import (
	"context"
	"testing"

	"github.com/lixenwraith/spotlight/hotkey"
	"github.com/lixenwraith/spotlight/settings"
	"github.com/lixenwraith/spotlight/status"
)

type fakeOverlay struct {
	serial  int
	mask    Mask
	dim     float64
	masks   int
	removed bool
}

func (o *fakeOverlay) SetMask(m Mask)       { o.mask = m; o.masks++ }
func (o *fakeOverlay) SetDim(alpha float64) { o.dim = alpha }
func (o *fakeOverlay) Remove()              { o.removed = true }

type fakeCursor struct {
	serial  int
	at      Point
	removed bool
}

func (c *fakeCursor) MoveTo(p Point) { c.at = p }
func (c *fakeCursor) Remove()        { c.removed = true }

// fakeSurface records every handle it hands out
type fakeSurface struct {
	overlays      []*fakeOverlay
	cursors       []*fakeCursor
	pointerHidden bool
}

func (s *fakeSurface) CreateOverlay(style OverlayStyle) Overlay {
	o := &fakeOverlay{serial: len(s.overlays) + 1, mask: style.Mask, dim: style.Dim}
	s.overlays = append(s.overlays, o)
	return o
}

func (s *fakeSurface) CreateCursor(at Point) Cursor {
	c := &fakeCursor{serial: len(s.cursors) + 1, at: at}
	s.cursors = append(s.cursors, c)
	return c
}

func (s *fakeSurface) SetPointerHidden(hidden bool) { s.pointerHidden = hidden }

// live returns overlays and cursors not yet removed
func (s *fakeSurface) live() (overlays []*fakeOverlay, cursors []*fakeCursor) {
	for _, o := range s.overlays {
		if !o.removed {
			overlays = append(overlays, o)
		}
	}
	for _, c := range s.cursors {
		if !c.removed {
			cursors = append(cursors, c)
		}
	}
	return overlays, cursors
}

// fakeFrames queues callbacks until tick is called
type fakeFrames struct {
	pending []func()
}

func (f *fakeFrames) RequestFrame(fn func()) { f.pending = append(f.pending, fn) }

func (f *fakeFrames) tick() {
	run := f.pending
	f.pending = nil
	for _, fn := range run {
		fn()
	}
}

type harness struct {
	t       *testing.T
	store   *settings.MemoryStore
	surface *fakeSurface
	frames  *fakeFrames
	metrics *status.Registry
	ctrl    *Controller
	trans   [][2]State
}

func newHarness(t *testing.T, store *settings.MemoryStore) *harness {
	t.Helper()
	if store == nil {
		store = settings.NewMemoryStore(nil)
	}
	h := &harness{
		t:       t,
		store:   store,
		surface: &fakeSurface{},
		frames:  &fakeFrames{},
		metrics: status.NewRegistry(),
	}
	ctrl, err := New(Options{
		Store:   store,
		Surface: h.surface,
		Frames:  h.frames,
		Metrics: h.metrics,
		ID:      t.Name(),
		OnTransition: func(from, to State) {
			h.trans = append(h.trans, [2]State{from, to})
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.ctrl = ctrl
	t.Cleanup(ctrl.Close)
	return h
}

func (h *harness) press(ev hotkey.Event) {
	h.ctrl.KeyDown(ev)
}

func (h *harness) set(rec settings.Record) {
	h.t.Helper()
	if err := h.store.Set(context.Background(), rec); err != nil {
		h.t.Fatalf("store.Set: %v", err)
	}
}

func (h *harness) requireState(want State) {
	h.t.Helper()
	if got := h.ctrl.State(); got != want {
		h.t.Fatalf("state = %v, want %v", got, want)
	}
}

func (h *harness) requireLive(wantOverlays, wantCursors int) ([]*fakeOverlay, []*fakeCursor) {
	h.t.Helper()
	o, c := h.surface.live()
	if len(o) != wantOverlays || len(c) != wantCursors {
		h.t.Fatalf("live handles = %d overlays, %d cursors; want %d, %d", len(o), len(c), wantOverlays, wantCursors)
	}
	return o, c
}

var ctrlShift = hotkey.Event{Ctrl: true, Shift: true}
