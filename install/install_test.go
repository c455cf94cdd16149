package install

import (
	"context"
	"errors"
	"testing"
)

type call struct {
	op  string
	url string
}

type fakeHost struct {
	targets   []Target
	listErr   error
	cssErr    map[string]error
	scriptErr map[string]error
	calls     []call
}

func (h *fakeHost) Targets(context.Context) ([]Target, error) {
	return h.targets, h.listErr
}

func (h *fakeHost) InsertStylesheet(_ context.Context, t Target) error {
	h.calls = append(h.calls, call{"css", t.URL})
	return h.cssErr[t.URL]
}

func (h *fakeHost) ExecuteScript(_ context.Context, t Target) error {
	h.calls = append(h.calls, call{"script", t.URL})
	return h.scriptErr[t.URL]
}

func TestRestricted(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"chrome://settings", true},
		{"chrome-extension://abc/popup.html", true},
		{"edge://flags", true},
		{"moz-extension://x/y", true},
		{"spotlight://settings", true},
		{"about:blank", true},
		{"about:blankish", false},
		{"https://example.com", false},
		{"file:///tmp/notes.md", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Restricted(tt.url); got != tt.want {
			t.Errorf("Restricted(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestInjectAllOrderAndIsolation(t *testing.T) {
	boom := errors.New("protected page")
	h := &fakeHost{
		targets: []Target{
			{ID: "1", URL: "https://a.example"},
			{ID: "2", URL: "chrome://newtab"},
			{ID: "3", URL: "https://store.example"},
			{ID: "4", URL: "https://b.example"},
			{ID: "5", URL: "https://c.example"},
		},
		cssErr:    map[string]error{"https://store.example": boom},
		scriptErr: map[string]error{"https://b.example": boom},
	}

	rep, err := NewInjector(h, nil).InjectAll(context.Background())
	if err != nil {
		t.Fatalf("InjectAll: %v", err)
	}
	if len(rep.Injected) != 2 || rep.Injected[0].ID != "1" || rep.Injected[1].ID != "5" {
		t.Errorf("injected = %+v", rep.Injected)
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0].ID != "2" {
		t.Errorf("skipped = %+v", rep.Skipped)
	}
	if len(rep.Failed) != 2 || !errors.Is(rep.Failed[0].Err, boom) || !errors.Is(rep.Failed[1].Err, boom) {
		t.Errorf("failed = %+v", rep.Failed)
	}

	want := []call{
		{"css", "https://a.example"}, {"script", "https://a.example"},
		{"css", "https://store.example"},
		{"css", "https://b.example"}, {"script", "https://b.example"},
		{"css", "https://c.example"}, {"script", "https://c.example"},
	}
	if len(h.calls) != len(want) {
		t.Fatalf("calls = %v", h.calls)
	}
	for i := range want {
		if h.calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, h.calls[i], want[i])
		}
	}
}

func TestInjectAllListFailure(t *testing.T) {
	h := &fakeHost{listErr: errors.New("no tabs")}
	if _, err := NewInjector(h, nil).InjectAll(context.Background()); err == nil {
		t.Error("Expected list error")
	}
}

func TestOnInstalledReasons(t *testing.T) {
	tests := []struct {
		reason Reason
		calls  int
	}{
		{ReasonInstall, 2},
		{ReasonUpdate, 2},
		{Reason("startup"), 0},
		{Reason("browser_update"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			h := &fakeHost{targets: []Target{{ID: "1", URL: "https://a.example"}}}
			if _, err := NewInjector(h, nil).OnInstalled(context.Background(), tt.reason); err != nil {
				t.Fatal(err)
			}
			if len(h.calls) != tt.calls {
				t.Errorf("calls = %d, want %d", len(h.calls), tt.calls)
			}
		})
	}
}

func TestInjectAllStopsOnCancel(t *testing.T) {
	h := &fakeHost{targets: []Target{{ID: "1", URL: "https://a.example"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewInjector(h, nil).InjectAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(h.calls) != 0 {
		t.Errorf("calls after cancel = %v", h.calls)
	}
}
