// Package hotkey derives the spotlight trigger state from raw keyboard input.
//
// Modifier state is never accumulated: each event replaces all three flags from
// the flags the event itself carries, so a missed release cannot leave a key
// stuck down. Focus loss clears everything.
package hotkey

// Modifiers is the held/released state of every tracked modifier key
type Modifiers struct {
	Ctrl  bool
	Shift bool
	Alt   bool
}

// Held maps a configured key to its current state
func (m Modifiers) Held(k Key) bool {
	switch k {
	case KeyCtrl:
		return m.Ctrl
	case KeyShift:
		return m.Shift
	case KeyAlt:
		return m.Alt
	}
	return false
}

// Event carries the native modifier flags reported with an input event
type Event struct {
	Ctrl  bool
	Shift bool
	Alt   bool
}

// Modifiers returns the event flags as a modifier state
func (e Event) Modifiers() Modifiers {
	return Modifiers{Ctrl: e.Ctrl, Shift: e.Shift, Alt: e.Alt}
}

// Tracker maintains live modifier state for one page instance
// Not safe for concurrent use; owned by the host event loop
type Tracker struct {
	state   Modifiers
	hotkey1 Key
	hotkey2 Key
}

// NewTracker creates a tracker for the given trigger pair
func NewTracker(hotkey1, hotkey2 Key) *Tracker {
	return &Tracker{hotkey1: hotkey1, hotkey2: hotkey2}
}

// SetHotkeys replaces the configured trigger pair
func (t *Tracker) SetHotkeys(hotkey1, hotkey2 Key) {
	t.hotkey1 = hotkey1
	t.hotkey2 = hotkey2
}

// OnKeyDown replaces modifier state from the event
// Returns true when the host should suppress default handling: the event
// carries Alt and Alt is one of the triggers, which would otherwise open
// host menus
func (t *Tracker) OnKeyDown(ev Event) bool {
	t.state = ev.Modifiers()
	return ev.Alt && (t.hotkey1 == KeyAlt || t.hotkey2 == KeyAlt)
}

// OnKeyUp replaces modifier state from the event
func (t *Tracker) OnKeyUp(ev Event) {
	t.state = ev.Modifiers()
}

// Observe replaces modifier state from a non-keyboard event that reports
// modifier flags, such as terminal mouse reports
func (t *Tracker) Observe(ev Event) {
	t.state = ev.Modifiers()
}

// OnBlur clears all modifier state; focus changes swallow key releases
func (t *Tracker) OnBlur() {
	t.state = Modifiers{}
}

// State returns a snapshot of current modifier state
func (t *Tracker) State() Modifiers {
	return t.state
}

// Active reports whether the configured combination is held
func (t *Tracker) Active() bool {
	return t.IsComboActive(t.hotkey1, t.hotkey2)
}

// IsComboActive reports whether both keys are currently held
// Identical keys degenerate to that single key's state
func (t *Tracker) IsComboActive(hotkey1, hotkey2 Key) bool {
	return t.state.Held(hotkey1) && t.state.Held(hotkey2)
}
