// Package viewer is the terminal host for spotlight pages. Each tab is a
// page instance with its own controller; all tabs share one settings store,
// and the keyboard doubles as the settings-editing surface.
//
// Every controller, surface and tab is owned by the single event loop in
// Run. Other goroutines reach it only through screen.PostEvent.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/spotlight/audio"
	"github.com/lixenwraith/spotlight/config"
	"github.com/lixenwraith/spotlight/core"
	"github.com/lixenwraith/spotlight/hotkey"
	"github.com/lixenwraith/spotlight/install"
	"github.com/lixenwraith/spotlight/logging"
	"github.com/lixenwraith/spotlight/parameter"
	"github.com/lixenwraith/spotlight/render"
	"github.com/lixenwraith/spotlight/settings"
	"github.com/lixenwraith/spotlight/spotlight"
	"github.com/lixenwraith/spotlight/status"
)

// CuePlayer plays activation sounds; *audio.Player satisfies it
type CuePlayer interface {
	Play(c audio.Cue)
}

// Screen is the part of tcell.Screen the viewer drives
type Screen interface {
	render.Screen
	Size() (width, height int)
	PollEvent() tcell.Event
	PostEvent(ev tcell.Event) error
	Sync()
}

// Options configures a Viewer; Screen and Store are required
type Options struct {
	Screen  Screen
	Store   settings.Store
	Config  config.Config
	Logger  *slog.Logger
	Metrics *status.Registry
	Cues    CuePlayer
}

// Viewer owns the screen and every tab
type Viewer struct {
	screen   Screen
	store    settings.Store
	editor   *settings.Editor
	injector *install.Injector
	cfg      config.Config
	cells    render.CellSize
	log      *slog.Logger
	metrics  *status.Registry
	cues     CuePlayer

	tabs    []*Tab
	current int
	buf     *render.Buffer

	// settings mirrors the store for the status bar and the settings page
	settings    settings.Settings
	unsubscribe func()

	flash      string
	flashUntil time.Time
	now        func() time.Time

	quit bool

	// pending holds callbacks posted from other goroutines until the loop runs them
	pendingMu sync.Mutex
	pending   []func()

	statRedraws *atomic.Int64
	statDrawMs  *status.Gauge
	statWakeups *atomic.Int64
	statTab     *status.Label
}

// New creates a viewer with no tabs
func New(opts Options) (*Viewer, error) {
	if opts.Screen == nil {
		return nil, errors.New("viewer: screen is required")
	}
	if opts.Store == nil {
		return nil, errors.New("viewer: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = status.NewRegistry()
	}
	cfg := opts.Config
	if cfg.Source == "" {
		cfg = config.Default()
	}

	v := &Viewer{
		screen:   opts.Screen,
		store:    opts.Store,
		editor:   settings.NewEditor(opts.Store),
		cfg:      cfg,
		cells:    render.CellSize{Width: cfg.Display.CellWidth, Height: cfg.Display.CellHeight},
		log:      logger.With("component", "viewer"),
		metrics:  metrics,
		cues:     opts.Cues,
		buf:      render.NewBuffer(0, 0),
		settings: settings.Defaults(),
		now:      time.Now,

		statRedraws: metrics.Ints.Get("viewer.redraws"),
		statDrawMs:  metrics.Gauges.Get("viewer.draw_ms"),
		statWakeups: metrics.Ints.Get("viewer.missed_wakeups"),
		statTab:     metrics.Labels.Get("viewer.tab"),
	}
	v.injector = install.NewInjector(v, logger)
	return v, nil
}

// Open adds a tab per argument; no arguments opens the help page
func (v *Viewer) Open(args ...string) {
	if len(args) == 0 {
		v.tabs = append(v.tabs, newTab(HelpDocument(), v.cells))
		return
	}
	for _, a := range args {
		v.tabs = append(v.tabs, newTab(NewDocument(a), v.cells))
	}
}

// Tabs returns open tabs in display order
func (v *Viewer) Tabs() []*Tab {
	return v.tabs
}

// Current returns the focused tab or nil
func (v *Viewer) Current() *Tab {
	if v.current < 0 || v.current >= len(v.tabs) {
		return nil
	}
	return v.tabs[v.current]
}

// Run starts every page and processes events until quit or ctx is done
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.start(ctx); err != nil {
		return err
	}
	defer v.stop()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, parameter.EventChannelSize)
	core.Go(func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	})

	ticker := time.NewTicker(parameter.FrameUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			v.handleEvent(ev)
			if v.quit {
				return nil
			}
		case <-ticker.C:
			v.tick()
		}
	}
}

// start subscribes to the store and runs the installation pass over open tabs
func (v *Viewer) start(ctx context.Context) error {
	if len(v.tabs) == 0 {
		v.Open()
	}
	v.resize()

	v.unsubscribe = v.store.OnChange(func(changes settings.Changes) {
		v.post(func() { v.applyChanges(changes) })
	})
	s, err := v.editor.Load(ctx)
	if err != nil {
		v.log.Debug("settings unavailable, showing defaults", "error", err)
	}
	v.settings = s

	rep, err := v.injector.OnInstalled(ctx, install.ReasonInstall)
	if err != nil {
		return fmt.Errorf("install: %w", err)
	}
	if len(rep.Failed) > 0 {
		v.showFlash(fmt.Sprintf("%d page(s) could not be loaded", len(rep.Failed)))
	}
	v.log.Info("viewer started",
		"tabs", len(v.tabs),
		"injected", len(rep.Injected),
		"skipped", len(rep.Skipped),
		"failed", len(rep.Failed))
	v.focus(v.current)
	return nil
}

func (v *Viewer) stop() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
	for _, t := range v.tabs {
		t.close()
	}
	v.log.Info("viewer stopped", v.metrics.LogAttrs()...)
}

// post queues fn for the event loop and wakes it when the queue was empty
// A wake-up lost to a full screen queue only delays fn until the next tick
func (v *Viewer) post(fn func()) {
	v.pendingMu.Lock()
	wake := len(v.pending) == 0
	v.pending = append(v.pending, fn)
	v.pendingMu.Unlock()
	if !wake {
		return
	}
	if err := v.screen.PostEvent(tcell.NewEventInterrupt(nil)); err != nil {
		v.statWakeups.Add(1)
		v.log.Debug("event queue full, deferring notification to next tick", "error", err)
	}
}

// runPending runs callbacks queued by post in order
func (v *Viewer) runPending() {
	v.pendingMu.Lock()
	run := v.pending
	v.pending = nil
	v.pendingMu.Unlock()
	for _, fn := range run {
		fn()
	}
}

func (v *Viewer) applyChanges(changes settings.Changes) {
	for name, ch := range changes {
		k, ok := settings.ParseKey(name)
		if !ok {
			continue
		}
		if err := v.settings.Apply(k, ch.NewValue); err != nil {
			v.log.Warn("ignoring malformed setting", "key", name, "error", err)
		}
	}
}

func (v *Viewer) onTransition(from, to spotlight.State) {
	v.metrics.Flags.Get("spotlight.active").Store(to == spotlight.StateActive)
	if v.cues == nil {
		return
	}
	switch {
	case to == spotlight.StateActive:
		v.cues.Play(audio.CueActivate)
	case from == spotlight.StateActive:
		v.cues.Play(audio.CueDeactivate)
	}
}

func (v *Viewer) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		v.runPending()
	case *tcell.EventResize:
		v.screen.Sync()
		v.resize()
	case *tcell.EventFocus:
		if !ev.Focused {
			if c := v.controller(); c != nil {
				c.Blur()
			}
		}
	case *tcell.EventKey:
		v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	}
}

func (v *Viewer) controller() *spotlight.Controller {
	if t := v.Current(); t != nil {
		return t.ctrl
	}
	return nil
}

func modifierEvent(m tcell.ModMask) hotkey.Event {
	return hotkey.Event{
		Ctrl:  m&tcell.ModCtrl != 0,
		Shift: m&tcell.ModShift != 0,
		Alt:   m&tcell.ModAlt != 0,
	}
}

func (v *Viewer) handleKey(ev *tcell.EventKey) {
	if c := v.controller(); c != nil {
		// Alt-bearing keys are swallowed when alt is a hotkey
		if c.KeyDown(modifierEvent(ev.Modifiers())) {
			return
		}
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		v.quit = true
	case tcell.KeyTab:
		v.focus((v.current + 1) % max(len(v.tabs), 1))
	case tcell.KeyBacktab:
		v.focus((v.current + len(v.tabs) - 1) % max(len(v.tabs), 1))
	case tcell.KeyUp:
		v.scroll(-1)
	case tcell.KeyDown:
		v.scroll(1)
	case tcell.KeyPgUp:
		v.scroll(-v.viewHeight())
	case tcell.KeyPgDn:
		v.scroll(v.viewHeight())
	case tcell.KeyRune:
		v.handleRune(ev.Rune())
	}
}

func (v *Viewer) handleRune(r rune) {
	ctx := context.Background()
	switch r {
	case 'q':
		v.quit = true
	case '+', '=':
		v.edit(ctx, func(s *settings.Settings) {
			s.SpotlightRadius = math.Min(s.SpotlightRadius+parameter.RadiusStep, parameter.MaxRadius)
		})
	case '-', '_':
		v.edit(ctx, func(s *settings.Settings) {
			s.SpotlightRadius = math.Max(s.SpotlightRadius-parameter.RadiusStep, 0)
		})
	case ']':
		v.edit(ctx, func(s *settings.Settings) { s.DimOpacity = roundDim(s.DimOpacity + parameter.DimStep) })
	case '[':
		v.edit(ctx, func(s *settings.Settings) { s.DimOpacity = roundDim(s.DimOpacity - parameter.DimStep) })
	case '}':
		v.edit(ctx, func(s *settings.Settings) { s.GradientSize += parameter.GradientStep })
	case '{':
		v.edit(ctx, func(s *settings.Settings) {
			s.GradientSize = math.Max(s.GradientSize-parameter.GradientStep, 0)
		})
	case 'c':
		v.edit(ctx, func(s *settings.Settings) { s.CursorStyle = nextCursorStyle(s.CursorStyle) })
	case 'e':
		v.edit(ctx, func(s *settings.Settings) { s.IsEnabled = !s.IsEnabled })
	case 'R':
		if err := v.editor.Reset(ctx); err != nil {
			v.showFlash("reset failed: " + err.Error())
			return
		}
		v.showFlash("settings reset to defaults")
	}
}

func roundDim(f float64) float64 {
	return math.Min(math.Max(math.Round(f*100)/100, 0), 1)
}

func nextCursorStyle(c settings.CursorStyle) settings.CursorStyle {
	switch c {
	case settings.CursorNormal:
		return settings.CursorHighlight
	case settings.CursorHighlight:
		return settings.CursorNone
	}
	return settings.CursorNormal
}

// edit writes through the editor; the store notification updates every tab
func (v *Viewer) edit(ctx context.Context, fn func(*settings.Settings)) {
	if err := v.editor.Update(ctx, fn); err != nil {
		v.log.Warn("settings update failed", "error", err)
		v.showFlash("settings unavailable")
	}
}

func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	t := v.Current()
	if t == nil {
		return
	}
	x, y := ev.Position()
	p := t.surface.CellSize().Center(x, y)
	t.surface.SetPointer(p)
	if t.ctrl != nil {
		// Position first so an activation opens the hole under the pointer
		t.ctrl.PointerMoved(p)
		t.ctrl.ObserveModifiers(modifierEvent(ev.Modifiers()))
	}

	switch btn := ev.Buttons(); {
	case btn&tcell.WheelUp != 0:
		v.scroll(-3)
	case btn&tcell.WheelDown != 0:
		v.scroll(3)
	}
}

// focus switches tabs; the tab losing focus sees a blur
func (v *Viewer) focus(i int) {
	if len(v.tabs) == 0 {
		return
	}
	if i != v.current {
		if c := v.controller(); c != nil {
			c.Blur()
		}
	}
	v.current = i
	v.statTab.Store(v.tabs[i].Doc.Title)
}

func (v *Viewer) scroll(delta int) {
	if t := v.Current(); t != nil {
		t.scrollBy(delta, v.viewHeight())
	}
}

func (v *Viewer) resize() {
	w, h := v.screen.Size()
	v.buf.Resize(w, h)
}

// viewHeight is the page area above the status bar
func (v *Viewer) viewHeight() int {
	_, h := v.buf.Size()
	return max(h-1, 0)
}

func (v *Viewer) showFlash(msg string) {
	v.flash = msg
	v.flashUntil = v.now().Add(parameter.IndicatorDuration)
}

// tick runs posted callbacks, then pending frame callbacks on every tab, and redraws
func (v *Viewer) tick() {
	v.runPending()
	for _, t := range v.tabs {
		t.frames.Flush()
	}
	v.draw()
}
