package hotkey

import "testing"

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{"ctrl", KeyCtrl, false},
		{"Shift", KeyShift, false},
		{" ALT ", KeyAlt, false},
		{"meta", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseKey(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyStringRoundTrip(t *testing.T) {
	for _, k := range Keys() {
		got, err := ParseKey(k.String())
		if err != nil || got != k {
			t.Errorf("round trip of %v failed: got %v, err %v", k, got, err)
		}
	}
	if Key(9).Valid() {
		t.Error("Expected Key(9) to be invalid")
	}
}

func TestComboRequiresBothKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{"none", Event{}, false},
		{"ctrl only", Event{Ctrl: true}, false},
		{"shift only", Event{Shift: true}, false},
		{"ctrl+shift", Event{Ctrl: true, Shift: true}, true},
		{"ctrl+shift+alt", Event{Ctrl: true, Shift: true, Alt: true}, true},
		{"ctrl+alt", Event{Ctrl: true, Alt: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(KeyCtrl, KeyShift)
			tr.OnKeyDown(tt.ev)
			if got := tr.Active(); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateFollowsLatestEventOnly(t *testing.T) {
	// Key-up for ctrl never arrives; next event reports ctrl released
	seq := []Event{
		{Ctrl: true},
		{Ctrl: true, Shift: true},
		{Shift: true},
	}

	tr := NewTracker(KeyCtrl, KeyShift)
	for i, ev := range seq {
		if i%2 == 0 {
			tr.OnKeyDown(ev)
		} else {
			tr.OnKeyUp(ev)
		}
		if got := tr.State(); got != ev.Modifiers() {
			t.Fatalf("after event %d state = %+v, want %+v", i, got, ev.Modifiers())
		}
	}
	if tr.Active() {
		t.Error("Expected combo inactive after ctrl reported released")
	}
}

func TestObserveReplacesState(t *testing.T) {
	tr := NewTracker(KeyCtrl, KeyShift)
	tr.OnKeyDown(Event{Ctrl: true, Shift: true})
	tr.Observe(Event{Alt: true})
	if tr.Active() {
		t.Error("Expected pointer-reported flags to clear the combo")
	}
	if !tr.State().Alt {
		t.Error("Expected alt held after observe")
	}
}

func TestBlurResetsRegardlessOfPriorState(t *testing.T) {
	priors := []Event{
		{},
		{Ctrl: true},
		{Ctrl: true, Shift: true, Alt: true},
	}
	for _, prior := range priors {
		tr := NewTracker(KeyCtrl, KeyShift)
		tr.OnKeyDown(prior)
		tr.OnBlur()
		if tr.Active() {
			t.Errorf("prior %+v: combo active after blur", prior)
		}
		if tr.State() != (Modifiers{}) {
			t.Errorf("prior %+v: state %+v after blur", prior, tr.State())
		}
	}
}

func TestIdenticalHotkeysDegenerateToSingleKey(t *testing.T) {
	tr := NewTracker(KeyAlt, KeyAlt)
	tr.OnKeyDown(Event{Alt: true})
	if !tr.Active() {
		t.Error("Expected alt+alt active with alt held")
	}
	tr.OnKeyUp(Event{})
	if tr.Active() {
		t.Error("Expected alt+alt inactive after release")
	}
}

func TestAltSuppression(t *testing.T) {
	tests := []struct {
		name         string
		h1, h2       Key
		ev           Event
		wantSuppress bool
	}{
		{"alt trigger with alt", KeyCtrl, KeyAlt, Event{Alt: true}, true},
		{"alt first trigger", KeyAlt, KeyShift, Event{Alt: true, Shift: true}, true},
		{"alt trigger without alt", KeyCtrl, KeyAlt, Event{Ctrl: true}, false},
		{"no alt trigger", KeyCtrl, KeyShift, Event{Alt: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(tt.h1, tt.h2)
			if got := tr.OnKeyDown(tt.ev); got != tt.wantSuppress {
				t.Errorf("OnKeyDown() suppress = %v, want %v", got, tt.wantSuppress)
			}
		})
	}
}
