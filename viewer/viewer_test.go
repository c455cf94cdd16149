package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/spotlight/audio"
	"github.com/lixenwraith/spotlight/render"
	"github.com/lixenwraith/spotlight/settings"
	"github.com/lixenwraith/spotlight/spotlight"
)

type fakeScreen struct {
	w, h     int
	runes    map[[2]int]rune
	styles   map[[2]int]tcell.Style
	cursorX  int
	cursorY  int
	cursorOn bool
	queue    []tcell.Event
	full     bool
	shows    int
	syncs    int
}

func newFakeScreen(w, h int) *fakeScreen {
	return &fakeScreen{w: w, h: h, runes: map[[2]int]rune{}, styles: map[[2]int]tcell.Style{}}
}

func (s *fakeScreen) SetContent(x, y int, r rune, _ []rune, st tcell.Style) {
	s.runes[[2]int{x, y}] = r
	s.styles[[2]int{x, y}] = st
}
func (s *fakeScreen) ShowCursor(x, y int)    { s.cursorX, s.cursorY, s.cursorOn = x, y, true }
func (s *fakeScreen) HideCursor()            { s.cursorOn = false }
func (s *fakeScreen) Show()                  { s.shows++ }
func (s *fakeScreen) Sync()                  { s.syncs++ }
func (s *fakeScreen) Size() (int, int)       { return s.w, s.h }
func (s *fakeScreen) PollEvent() tcell.Event { return nil }

func (s *fakeScreen) bg(x, y int) tcell.Color {
	_, bg, _ := s.styles[[2]int{x, y}].Decompose()
	return bg
}

func (s *fakeScreen) PostEvent(ev tcell.Event) error {
	if s.full {
		return errors.New("event queue full")
	}
	s.queue = append(s.queue, ev)
	return nil
}

type fakeCues struct{ played []audio.Cue }

func (c *fakeCues) Play(cue audio.Cue) { c.played = append(c.played, cue) }

type fixture struct {
	t      *testing.T
	v      *Viewer
	screen *fakeScreen
	store  *settings.MemoryStore
	cues   *fakeCues
}

func writeDoc(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	body := "Heading\n" + strings.Repeat("lorem ipsum dolor sit amet\n", 60)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func newFixture(t *testing.T, args ...string) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		screen: newFakeScreen(100, 40),
		store:  settings.NewMemoryStore(nil),
		cues:   &fakeCues{},
	}
	v, err := New(Options{Screen: f.screen, Store: f.store, Cues: f.cues})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v.Open(args...)
	if err := v.start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(v.stop)
	f.v = v
	return f
}

// drain runs posted events the way the loop would
func (f *fixture) drain() {
	for len(f.screen.queue) > 0 {
		ev := f.screen.queue[0]
		f.screen.queue = f.screen.queue[1:]
		f.v.handleEvent(ev)
	}
}

func (f *fixture) key(r rune) {
	f.v.handleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	f.drain()
}

func (f *fixture) mouse(x, y int, mod tcell.ModMask) {
	f.v.handleEvent(tcell.NewEventMouse(x, y, tcell.ButtonNone, mod))
	f.drain()
}

func (f *fixture) ctrl() *spotlight.Controller {
	f.t.Helper()
	c := f.v.Current().Controller()
	if c == nil {
		f.t.Fatal("current tab has no controller")
	}
	return c
}

const ctrlShift = tcell.ModCtrl | tcell.ModShift

func TestNewDocument(t *testing.T) {
	abs, _ := filepath.Abs("notes.md")
	tests := []struct {
		arg    string
		url    string
		loaded bool
	}{
		{"", "about:blank", true},
		{"about:blank", "about:blank", true},
		{SettingsURL, SettingsURL, true},
		{"https://example.com/a", "https://example.com/a", false},
		{"file:///tmp/x.txt", "file:///tmp/x.txt", false},
		{"notes.md", "file://" + filepath.ToSlash(abs), false},
	}
	for _, tt := range tests {
		d := NewDocument(tt.arg)
		if d.URL != tt.url || d.Loaded() != tt.loaded {
			t.Errorf("NewDocument(%q) = %q loaded=%v, want %q loaded=%v", tt.arg, d.URL, d.Loaded(), tt.url, tt.loaded)
		}
	}
	remote := NewDocument("https://example.com")
	if err := remote.Load(); err == nil {
		t.Error("Expected remote documents to fail loading")
	}
}

func TestStartInjectsQualifyingTabsOnly(t *testing.T) {
	doc := writeDoc(t, "guide.txt")
	missing := filepath.Join(t.TempDir(), "gone.txt")
	f := newFixture(t, doc, SettingsURL, "about:blank", missing)

	tabs := f.v.Tabs()
	if tabs[0].Controller() == nil {
		t.Error("file tab not injected")
	}
	for _, i := range []int{1, 2} {
		if tabs[i].Controller() != nil {
			t.Errorf("restricted tab %q received a controller", tabs[i].Doc.URL)
		}
	}
	if tabs[3].Controller() != nil {
		t.Error("unreadable tab received a controller")
	}
	if !strings.Contains(f.v.flash, "could not be loaded") {
		t.Errorf("flash = %q", f.v.flash)
	}
	if got := len(tabs[0].Doc.Lines); got != 61 {
		t.Errorf("document lines = %d, want 61", got)
	}
}

func TestHelpTabByDefault(t *testing.T) {
	f := newFixture(t)
	if len(f.v.Tabs()) != 1 || f.v.Current().Doc.URL != helpURL {
		t.Fatalf("tabs = %+v", f.v.Tabs())
	}
	f.ctrl()
}

func TestMouseModifiersDriveSpotlight(t *testing.T) {
	f := newFixture(t)
	f.mouse(50, 18, ctrlShift)
	c := f.ctrl()
	if c.State() != spotlight.StateActive {
		t.Fatalf("state = %v, want active", c.State())
	}
	if c.Pointer() != (spotlight.Point{X: 404, Y: 296}) {
		t.Errorf("pointer = %+v", c.Pointer())
	}
	if o, m := f.v.Current().Surface().Live(); o != 1 || m != 1 {
		t.Errorf("live = %d overlays, %d markers", o, m)
	}

	f.mouse(51, 18, tcell.ModCtrl)
	if c.State() != spotlight.StateIdle {
		t.Errorf("state after releasing shift = %v", c.State())
	}
	if o, m := f.v.Current().Surface().Live(); o != 0 || m != 0 {
		t.Errorf("live after release = %d, %d", o, m)
	}
	want := []audio.Cue{audio.CueActivate, audio.CueDeactivate}
	if len(f.cues.played) != 2 || f.cues.played[0] != want[0] || f.cues.played[1] != want[1] {
		t.Errorf("cues = %v", f.cues.played)
	}
}

func TestDrawDimsOutsideSpotlight(t *testing.T) {
	f := newFixture(t)
	f.mouse(50, 18, ctrlShift)
	f.v.tick()

	dimmed := render.RGBBackground.Blend(render.RGBBlack, 0.7).Color()
	if got := f.screen.bg(0, 0); got != dimmed {
		t.Errorf("far cell bg = %v, want %v", got, dimmed)
	}
	if got := f.screen.bg(45, 18); got != render.RGBBackground.Color() {
		t.Errorf("cell inside hole bg = %v", got)
	}
	if got := f.screen.bg(0, 39); got != render.RGBStatusBg.Color() {
		t.Errorf("status bar was dimmed: %v", got)
	}
	if f.screen.cursorOn {
		t.Error("terminal cursor visible under highlight style")
	}

	f.mouse(50, 18, tcell.ModNone)
	f.v.tick()
	if !f.screen.cursorOn || f.screen.cursorX != 50 || f.screen.cursorY != 18 {
		t.Errorf("cursor = %v at %d,%d", f.screen.cursorOn, f.screen.cursorX, f.screen.cursorY)
	}
}

func TestFrameFlushMovesMask(t *testing.T) {
	f := newFixture(t)
	f.mouse(50, 18, ctrlShift)
	for x := 10; x < 20; x++ {
		f.mouse(x, 5, ctrlShift)
	}
	if got := f.v.metrics.Ints.Get("spotlight.coalesced").Load(); got != 9 {
		t.Errorf("coalesced = %d, want 9", got)
	}
	f.v.tick()
	if got := f.v.metrics.Ints.Get("spotlight.frames").Load(); got != 1 {
		t.Errorf("frames = %d, want 1", got)
	}
	inside := f.screen.bg(19, 5)
	if inside == render.RGBBackground.Blend(render.RGBBlack, 0.7).Color() {
		t.Error("mask did not follow the pointer")
	}
}

func TestEditingKeysWriteThroughStore(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		key   rune
		check func(settings.Settings) bool
	}{
		{'+', func(s settings.Settings) bool { return s.SpotlightRadius == 130 }},
		{'-', func(s settings.Settings) bool { return s.SpotlightRadius == 125 }},
		{']', func(s settings.Settings) bool { return s.DimOpacity == 0.75 }},
		{'[', func(s settings.Settings) bool { return s.DimOpacity == 0.7 }},
		{'}', func(s settings.Settings) bool { return s.GradientSize == 22 }},
		{'{', func(s settings.Settings) bool { return s.GradientSize == 20 }},
		{'c', func(s settings.Settings) bool { return s.CursorStyle == settings.CursorNone }},
		{'c', func(s settings.Settings) bool { return s.CursorStyle == settings.CursorNormal }},
		{'e', func(s settings.Settings) bool { return !s.IsEnabled }},
	}
	for _, tt := range tests {
		f.key(tt.key)
		if !tt.check(f.v.settings) {
			t.Fatalf("after %q viewer settings = %+v", tt.key, f.v.settings)
		}
		if !tt.check(f.ctrl().Settings()) && tt.key != 'e' {
			t.Fatalf("after %q controller settings = %+v", tt.key, f.ctrl().Settings())
		}
	}
	if f.ctrl().State() != spotlight.StateDisabled {
		t.Errorf("state = %v after toggling enabled", f.ctrl().State())
	}

	f.key('R')
	if f.v.settings != settings.Defaults() {
		t.Errorf("settings after reset = %+v", f.v.settings)
	}
	if f.ctrl().State() != spotlight.StateIdle {
		t.Errorf("state after reset = %v", f.ctrl().State())
	}
}

func TestEditingKeyClampsAtZero(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Set(context.Background(), settings.Record{"spotlightRadius": 3.0, "dimOpacity": 0.02}); err != nil {
		t.Fatal(err)
	}
	f.drain()
	f.key('-')
	f.key('[')
	if f.v.settings.SpotlightRadius != 0 || f.v.settings.DimOpacity != 0 {
		t.Errorf("settings = %+v", f.v.settings)
	}
}

func TestEditsVisibleInOtherTabs(t *testing.T) {
	f := newFixture(t, writeDoc(t, "a.txt"), writeDoc(t, "b.txt"))
	f.key('+')
	for _, tab := range f.v.Tabs() {
		if tab.Controller().Settings().SpotlightRadius != 130 {
			t.Errorf("tab %s radius = %v", tab.Doc.Title, tab.Controller().Settings().SpotlightRadius)
		}
	}
}

func TestTabSwitchBlursPreviousPage(t *testing.T) {
	f := newFixture(t, writeDoc(t, "a.txt"), writeDoc(t, "b.txt"))
	f.mouse(10, 10, ctrlShift)
	first := f.ctrl()
	if first.State() != spotlight.StateActive {
		t.Fatalf("state = %v", first.State())
	}

	// Modifiers still held while switching: only the blur releases them
	f.v.handleEvent(tcell.NewEventKey(tcell.KeyTab, 0, ctrlShift))
	if f.v.Current() != f.v.Tabs()[1] {
		t.Fatal("Tab did not advance")
	}
	if first.State() != spotlight.StateIdle {
		t.Errorf("previous tab state = %v, want idle", first.State())
	}
	if got := f.v.metrics.Labels.Get("viewer.tab").Load(); got != "b.txt" {
		t.Errorf("tab label = %q", got)
	}
}

func TestFocusLossBlurs(t *testing.T) {
	f := newFixture(t)
	f.mouse(10, 10, ctrlShift)
	f.v.handleEvent(tcell.NewEventFocus(false))
	if f.ctrl().State() != spotlight.StateIdle {
		t.Errorf("state after focus loss = %v", f.ctrl().State())
	}
}

func TestAltHotkeySwallowsKeys(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Set(context.Background(), settings.Record{"hotkey1": "alt"}); err != nil {
		t.Fatal(err)
	}
	f.drain()

	f.v.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModAlt))
	if f.v.quit {
		t.Error("alt-bearing key reached the viewer keymap")
	}
	f.v.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	if !f.v.quit {
		t.Error("plain q did not quit")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tcell.Key{tcell.KeyEscape, tcell.KeyCtrlC} {
		f := newFixture(t)
		f.v.handleEvent(tcell.NewEventKey(k, 0, tcell.ModNone))
		if !f.v.quit {
			t.Errorf("key %v did not quit", k)
		}
	}
}

func TestPostsCoalesceIntoOneWakeup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, r := range []float64{10, 20, 30} {
		if err := f.store.Set(ctx, settings.Record{"spotlightRadius": r}); err != nil {
			t.Fatal(err)
		}
	}
	// Viewer mirror plus one controller, three writes each
	if got := len(f.screen.queue); got != 1 {
		t.Fatalf("queued wake-ups = %d, want 1", got)
	}
	f.drain()
	if got := f.ctrl().Settings().SpotlightRadius; got != 30 {
		t.Errorf("controller radius = %v, want 30", got)
	}
	if got := f.v.settings.SpotlightRadius; got != 30 {
		t.Errorf("viewer radius = %v, want 30", got)
	}
}

func TestFullEventQueueDefersChangeToTick(t *testing.T) {
	f := newFixture(t)
	f.mouse(50, 18, ctrlShift)
	if f.ctrl().State() != spotlight.StateActive {
		t.Fatalf("state = %v, want active", f.ctrl().State())
	}

	f.screen.full = true
	if err := f.store.Set(context.Background(), settings.Record{"isEnabled": false}); err != nil {
		t.Fatal(err)
	}
	if got := f.v.metrics.Ints.Get("viewer.missed_wakeups").Load(); got != 1 {
		t.Errorf("missed wake-ups = %d, want 1", got)
	}
	// Later input does not lose the queued change
	f.v.handleEvent(tcell.NewEventMouse(51, 18, tcell.ButtonNone, ctrlShift))

	f.screen.full = false
	f.v.tick()
	if got := f.ctrl().State(); got != spotlight.StateDisabled {
		t.Errorf("state after tick = %v, want disabled", got)
	}
	if overlays, cursors := f.v.Current().Surface().Live(); overlays != 0 || cursors != 0 {
		t.Errorf("live handles = %d overlays, %d cursors after disable", overlays, cursors)
	}
	if f.v.settings.IsEnabled {
		t.Error("viewer mirror still enabled")
	}
}

func TestDrawRecordsDuration(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)
	calls := 0
	f.v.now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(2500 * time.Microsecond)
	}
	f.v.tick()
	if got := f.v.metrics.Gauges.Get("viewer.draw_ms").Load(); got != 2.5 {
		t.Errorf("draw_ms = %v, want 2.5", got)
	}
	if got := f.v.metrics.Snapshot()["viewer.draw_ms"]; got != "2.5" {
		t.Errorf("snapshot draw_ms = %q, want 2.5", got)
	}
}

func TestStopReleasesEverything(t *testing.T) {
	f := newFixture(t)
	f.mouse(10, 10, ctrlShift)
	f.v.stop()
	if f.store.Listeners() != 0 {
		t.Errorf("listeners after stop = %d", f.store.Listeners())
	}
	if o, m := f.v.Current().Surface().Live(); o != 0 || m != 0 {
		t.Errorf("live after stop = %d, %d", o, m)
	}
}

func TestSettingsPageShowsStorePath(t *testing.T) {
	store := settings.NewFileStore(filepath.Join(t.TempDir(), "s.yaml"), nil)
	lines := settingsPage(settings.Defaults(), store)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"125 px", "70 %", "ctrl + shift", "highlight", store.Path()} {
		if !strings.Contains(joined, want) {
			t.Errorf("settings page missing %q", want)
		}
	}
}

func TestScrollBounds(t *testing.T) {
	f := newFixture(t, writeDoc(t, "long.txt"))
	f.v.handleEvent(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	f.v.handleEvent(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	if got := f.v.Current().scroll; got != 61-39 {
		t.Errorf("scroll = %d, want %d", got, 61-39)
	}
	f.v.handleEvent(tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone))
	f.v.handleEvent(tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone))
	if got := f.v.Current().scroll; got != 0 {
		t.Errorf("scroll = %d, want 0", got)
	}
}
