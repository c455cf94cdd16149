// Package spotlight implements the per-page spotlight controller: the
// Disabled/Idle/Active lifecycle driven by the hotkey combination and the
// shared settings record, plus the mask geometry it renders with.
//
// A Controller is owned by a single event loop and is not safe for
// concurrent use. Store notifications, which may arrive on any goroutine,
// are handed to the loop through Options.Post.
package spotlight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lixenwraith/spotlight/hotkey"
	"github.com/lixenwraith/spotlight/settings"
	"github.com/lixenwraith/spotlight/status"
)

// State is the controller lifecycle state
type State uint8

const (
	StateDisabled State = iota // isEnabled false, no UI
	StateIdle                  // enabled, combo not held, no UI
	StateActive                // enabled, combo held, overlay present
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	}
	return "unknown"
}

// Options configures a Controller; Store, Surface and Frames are required
type Options struct {
	Store   settings.Store
	Surface Surface
	Frames  FrameScheduler

	Logger  *slog.Logger
	Metrics *status.Registry

	// Post runs fn on the controller's event loop; nil runs it inline
	Post func(fn func())

	// OnTransition observes every state change
	OnTransition func(from, to State)

	// ID names the instance in logs; generated when empty
	ID string
}

// Controller is the spotlight state machine for one page instance
type Controller struct {
	id      string
	log     *slog.Logger
	store   settings.Store
	surface Surface
	frames  FrameScheduler
	post    func(func())
	onTrans func(from, to State)

	tracker  *hotkey.Tracker
	settings settings.Settings
	enabled  bool
	active   bool
	pointer  Point

	overlay Overlay
	cursor  Cursor

	// Dirty flag: a frame callback is pending and will read the latest pointer
	frameScheduled bool

	started     bool
	closed      bool
	unsubscribe func()

	statActivations *atomic.Int64
	statFrames      *atomic.Int64
	statMoves       *atomic.Int64
	statCoalesced   *atomic.Int64
	statChanges     *atomic.Int64
}

// New creates a controller in the Idle state with default settings
// Call Start before routing input to it
func New(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("spotlight: store is required")
	}
	if opts.Surface == nil {
		return nil, errors.New("spotlight: surface is required")
	}
	if opts.Frames == nil {
		return nil, errors.New("spotlight: frame scheduler is required")
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	post := opts.Post
	if post == nil {
		post = func(fn func()) { fn() }
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = status.NewRegistry()
	}

	defaults := settings.Defaults()
	return &Controller{
		id:       id,
		log:      logger.With("component", "spotlight", "instance", id),
		store:    opts.Store,
		surface:  opts.Surface,
		frames:   opts.Frames,
		post:     post,
		onTrans:  opts.OnTransition,
		tracker:  hotkey.NewTracker(defaults.Hotkey1, defaults.Hotkey2),
		settings: defaults,
		enabled:  true,

		statActivations: metrics.Ints.Get("spotlight.activations"),
		statFrames:      metrics.Ints.Get("spotlight.frames"),
		statMoves:       metrics.Ints.Get("spotlight.moves"),
		statCoalesced:   metrics.Ints.Get("spotlight.coalesced"),
		statChanges:     metrics.Ints.Get("spotlight.setting_changes"),
	}, nil
}

// ID returns the instance identifier
func (c *Controller) ID() string {
	return c.id
}

// Start loads settings and then subscribes to change notifications
// Read failures fall back to compiled-in defaults; Start never fails because of the store
func (c *Controller) Start(ctx context.Context) error {
	if c.closed {
		return errors.New("spotlight: controller closed")
	}
	if c.started {
		return errors.New("spotlight: controller already started")
	}
	c.started = true

	c.loadSettings(ctx)
	c.unsubscribe = c.store.OnChange(func(changes settings.Changes) {
		c.post(func() { c.applyChanges(changes) })
	})

	c.log.Info("spotlight initialized",
		"enabled", c.enabled,
		"hotkeys", c.settings.Hotkey1.String()+"+"+c.settings.Hotkey2.String(),
		"radius", c.settings.SpotlightRadius)
	return nil
}

func (c *Controller) loadSettings(ctx context.Context) {
	rec, err := c.store.Get(ctx, settings.ControllerDefaults())
	if err != nil {
		c.log.Debug("using default settings", "error", err)
		return
	}
	s, err := settings.FromRecord(c.settings, rec)
	if err != nil {
		c.log.Warn("ignoring malformed stored settings", "error", err)
	}
	c.settings = s
	c.tracker.SetHotkeys(s.Hotkey1, s.Hotkey2)

	rec, err = c.store.Get(ctx, settings.EnabledDefaults())
	if err != nil {
		c.log.Debug("using default enabled flag", "error", err)
		return
	}
	if b, ok := rec[settings.KeyEnabled.String()].(bool); ok {
		c.enabled = b
	}
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	switch {
	case !c.enabled:
		return StateDisabled
	case c.active:
		return StateActive
	}
	return StateIdle
}

// Settings returns the controller's local copy of the shared settings
func (c *Controller) Settings() settings.Settings {
	return c.settings
}

// Pointer returns the last reported pointer position
func (c *Controller) Pointer() Point {
	return c.pointer
}

// Modifiers returns the tracked modifier state
func (c *Controller) Modifiers() hotkey.Modifiers {
	return c.tracker.State()
}

// KeyDown feeds a key press; returns true when the host should suppress its default handling
func (c *Controller) KeyDown(ev hotkey.Event) bool {
	if c.closed {
		return false
	}
	prev := c.State()
	suppress := c.tracker.OnKeyDown(ev)
	c.updateMode()
	c.emit(prev)
	return suppress
}

// KeyUp feeds a key release
func (c *Controller) KeyUp(ev hotkey.Event) {
	if c.closed {
		return
	}
	prev := c.State()
	c.tracker.OnKeyUp(ev)
	c.updateMode()
	c.emit(prev)
}

// ObserveModifiers feeds modifier flags carried by a non-keyboard event
func (c *Controller) ObserveModifiers(ev hotkey.Event) {
	if c.closed {
		return
	}
	prev := c.State()
	c.tracker.Observe(ev)
	c.updateMode()
	c.emit(prev)
}

// Blur reports focus loss; all modifiers are released
func (c *Controller) Blur() {
	if c.closed {
		return
	}
	prev := c.State()
	c.tracker.OnBlur()
	c.updateMode()
	c.emit(prev)
}

// PointerMoved records the pointer and schedules at most one mask update per frame
// The highlight marker follows synchronously
func (c *Controller) PointerMoved(p Point) {
	if c.closed {
		return
	}
	c.pointer = p
	c.statMoves.Add(1)
	c.scheduleFrame()
	if c.cursor != nil {
		c.cursor.MoveTo(p)
	}
}

// Close releases every owned UI handle and stops listening to the store
// Safe to call in any state and more than once
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	prev := c.State()
	c.removeOverlay()
	c.removeCursor()
	c.active = false
	if !c.closed {
		c.closed = true
		c.emit(prev)
		c.log.Debug("spotlight closed")
	}
}

func (c *Controller) updateMode() {
	should := c.enabled && c.tracker.Active()
	if should == c.active {
		return
	}
	c.active = should
	if should {
		c.activate()
	} else {
		c.deactivate()
	}
}

func (c *Controller) activate() {
	if c.overlay != nil {
		c.removeOverlay()
	}
	eff := c.settings.Effective()
	c.overlay = c.surface.CreateOverlay(OverlayStyle{Mask: c.mask(), Dim: eff.DimOpacity})
	c.setupCursor()
	c.statActivations.Add(1)
}

func (c *Controller) deactivate() {
	c.removeOverlay()
	c.removeCursor()
}

func (c *Controller) mask() Mask {
	eff := c.settings.Effective()
	return NewMask(c.pointer, eff.SpotlightRadius, eff.GradientSize)
}

func (c *Controller) scheduleFrame() {
	if !c.active {
		return
	}
	if c.frameScheduled {
		c.statCoalesced.Add(1)
		return
	}
	c.frameScheduled = true
	c.frames.RequestFrame(c.onFrame)
}

func (c *Controller) onFrame() {
	c.frameScheduled = false
	if c.overlay == nil {
		return
	}
	c.overlay.SetMask(c.mask())
	c.statFrames.Add(1)
}

func (c *Controller) setupCursor() {
	c.surface.SetPointerHidden(c.settings.CursorStyle.HidesPointer())
	if c.settings.CursorStyle != settings.CursorHighlight {
		return
	}
	if c.cursor != nil {
		c.cursor.Remove()
	}
	c.cursor = c.surface.CreateCursor(c.pointer)
}

func (c *Controller) removeCursor() {
	c.surface.SetPointerHidden(false)
	if c.cursor != nil {
		c.cursor.Remove()
		c.cursor = nil
	}
}

func (c *Controller) removeOverlay() {
	if c.overlay != nil {
		c.overlay.Remove()
		c.overlay = nil
	}
}

// applyChanges handles one store notification
// The enabled flag is processed first; a disable tears down before any
// geometry update is considered
func (c *Controller) applyChanges(changes settings.Changes) {
	if c.closed {
		return
	}
	c.statChanges.Add(1)
	prev := c.State()

	if ch, ok := changes[settings.KeyEnabled.String()]; ok {
		if b, ok := ch.NewValue.(bool); ok {
			c.setEnabled(b)
		} else {
			c.log.Warn("ignoring malformed enabled flag", "value", ch.NewValue)
		}
	}

	var visual, cursorChanged, hotkeysChanged bool
	for _, k := range settings.VisualKeys() {
		ch, ok := changes[k.String()]
		if !ok {
			continue
		}
		if err := c.settings.Apply(k, ch.NewValue); err != nil {
			c.log.Warn("ignoring malformed setting", "key", k.String(), "error", err)
			continue
		}
		switch k {
		case settings.KeyCursorStyle:
			cursorChanged = true
		case settings.KeyHotkey1, settings.KeyHotkey2:
			hotkeysChanged = true
		default:
			visual = true
		}
	}

	if hotkeysChanged {
		c.tracker.SetHotkeys(c.settings.Hotkey1, c.settings.Hotkey2)
	}
	if c.active && (visual || cursorChanged) {
		c.applySettings(cursorChanged)
	}
	if hotkeysChanged {
		c.updateMode()
	}
	c.emit(prev)
}

func (c *Controller) setEnabled(enabled bool) {
	c.enabled = enabled
	if !enabled {
		c.active = false
		c.deactivate()
		return
	}
	c.updateMode()
}

// applySettings updates the live overlay in place; only the cursor handle is rebuilt
func (c *Controller) applySettings(cursorChanged bool) {
	if c.overlay == nil {
		return
	}
	c.overlay.SetDim(c.settings.Effective().DimOpacity)
	c.overlay.SetMask(c.mask())
	if cursorChanged {
		c.removeCursor()
		c.setupCursor()
	}
}

func (c *Controller) emit(prev State) {
	next := c.State()
	if next == prev {
		return
	}
	c.log.Debug("spotlight transition", "from", prev.String(), "to", next.String())
	if c.onTrans != nil {
		c.onTrans(prev, next)
	}
}
